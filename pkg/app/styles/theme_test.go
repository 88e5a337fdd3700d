package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestButton(t *testing.T) {
	assert.Contains(t, Button("next ›", true), "next ›")
	assert.Equal(t, ButtonStyle.Render("next ›"), Button("next ›", true))
	assert.Equal(t, DisabledButtonStyle.Render("‹ prev"), Button("‹ prev", false))
}

func TestFocusedInputKeepsLayout(t *testing.T) {
	assert.Equal(t, InputStyle.GetHorizontalPadding(), FocusedInputStyle.GetHorizontalPadding())
	assert.Equal(t, InputStyle.GetHorizontalBorderSize(), FocusedInputStyle.GetHorizontalBorderSize())
}
