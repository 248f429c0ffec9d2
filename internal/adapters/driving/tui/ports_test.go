package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPorts(t *testing.T) {
	library := &mockLibrary{}
	delivery := &mockDelivery{}

	ports := NewPorts(library, delivery, nil, nil)

	assert.Equal(t, library, ports.Library)
	assert.Equal(t, delivery, ports.Delivery)
	assert.Nil(t, ports.Ingest)
	assert.Nil(t, ports.Settings)
}

func TestPortsValidate(t *testing.T) {
	tests := []struct {
		name    string
		ports   Ports
		wantErr error
	}{
		{
			name:  "valid with required ports only",
			ports: Ports{Library: &mockLibrary{}, Delivery: &mockDelivery{}},
		},
		{
			name:    "missing library",
			ports:   Ports{Delivery: &mockDelivery{}},
			wantErr: ErrMissingLibraryService,
		},
		{
			name:    "missing delivery",
			ports:   Ports{Library: &mockLibrary{}},
			wantErr: ErrMissingDeliveryService,
		},
		{
			name:    "empty",
			ports:   Ports{},
			wantErr: ErrMissingLibraryService,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
