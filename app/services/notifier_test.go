package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Cavel-Dev/Hurly-sub000/app/config"
)

func TestNotifierRecipients(t *testing.T) {
	n := NewNotifier(nil, config.NotifyConfig{
		AlertRecipient:  "ops@hurly.example",
		PayrunRecipient: "finance@hurly.example",
	})

	assert.Equal(t, []string{"ops@hurly.example"}, n.recipients(nil),
		"empty request falls back to the alert recipient")

	assert.Equal(t,
		[]string{"a@hurly.example", "finance@hurly.example"},
		n.recipients([]string{"a@hurly.example"}, "finance@hurly.example"))

	assert.Equal(t,
		[]string{"a@hurly.example"},
		n.recipients([]string{"a@hurly.example", "a@hurly.example", ""}),
		"duplicates and blanks are dropped")
}
