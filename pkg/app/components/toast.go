package components

import (
	"github.com/kerbaras/gutenshelf/pkg/app/styles"
	"github.com/kerbaras/gutenshelf/pkg/services"
)

// Toast shows the latest notification until it is cleared.
type Toast struct {
	current *services.Notification
	seq     int
}

func NewToast() *Toast {
	return &Toast{}
}

// Show replaces the current notification and returns its sequence number,
// used to clear exactly this notification later.
func (t *Toast) Show(n services.Notification) int {
	t.seq++
	t.current = &n
	return t.seq
}

// Clear hides the notification if seq is still the one on screen.
func (t *Toast) Clear(seq int) {
	if seq == t.seq {
		t.current = nil
	}
}

func (t *Toast) Visible() bool {
	return t.current != nil
}

func (t *Toast) View() string {
	if t.current == nil {
		return ""
	}
	if t.current.Kind == services.NotifyError {
		return styles.ToastErrorStyle.Render("✗ " + t.current.Message)
	}
	return styles.ToastSuccessStyle.Render("✓ " + t.current.Message)
}
