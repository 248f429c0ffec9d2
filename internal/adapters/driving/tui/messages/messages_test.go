package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewTypeString(t *testing.T) {
	tests := []struct {
		view ViewType
		want string
	}{
		{ViewLibrary, "library"},
		{ViewDetail, "detail"},
		{ViewDelivery, "delivery"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.view.String())
		})
	}
}
