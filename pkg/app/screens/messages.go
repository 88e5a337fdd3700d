package screens

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kerbaras/gutenshelf/pkg/data"
	"github.com/kerbaras/gutenshelf/pkg/services"
)

// Bus carries service callbacks into the tea event loop. Services publish
// from any goroutine; the root screen keeps one Listen command pending.
type Bus struct {
	ch chan tea.Msg
}

func NewBus(size int) *Bus {
	return &Bus{ch: make(chan tea.Msg, size)}
}

// Publish never blocks. When the buffer is full the message is dropped;
// screens re-read service state on every message so nothing is lost but a
// redundant redraw.
func (b *Bus) Publish(msg tea.Msg) {
	select {
	case b.ch <- msg:
	default:
	}
}

// Listen waits for the next published message. The root screen re-arms it
// after each delivery.
func (b *Bus) Listen() tea.Cmd {
	return func() tea.Msg {
		return busMsg{msg: <-b.ch}
	}
}

type busMsg struct {
	msg tea.Msg
}

// Notifier forwards notifications to the bus as toasts.
func (b *Bus) Notifier() services.Notifier {
	return services.NotifierFunc(func(n services.Notification) {
		b.Publish(ToastMsg{Notification: n})
	})
}

// ToastMsg shows a notification.
type ToastMsg struct {
	services.Notification
}

type toastExpiredMsg struct {
	seq int
}

// WishlistChangedMsg carries the wishlist after a change.
type WishlistChangedMsg struct {
	Books []data.Book
}

// CatalogChangedMsg carries a catalog state snapshot.
type CatalogChangedMsg struct {
	State services.CatalogState
}

type screenName string

const (
	catalogScreen  screenName = "catalog"
	wishlistScreen screenName = "wishlist"
	detailsScreen  screenName = "details"
)

// SwitchScreenMsg asks the root screen to change view. For the details
// screen Data is the book id.
type SwitchScreenMsg struct {
	Screen screenName
	Data   any
}

func switchTo(screen screenName, data any) tea.Cmd {
	return func() tea.Msg {
		return SwitchScreenMsg{Screen: screen, Data: data}
	}
}

type catalogLoadedMsg struct {
	err error
}

type bookLoadedMsg struct {
	seq  int
	id   int
	book *data.Book
	err  error
}

type exportDoneMsg struct {
	path string
	err  error
}
