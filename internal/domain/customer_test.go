package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

func TestCustomerContact_HasChannel(t *testing.T) {
	tests := []struct {
		name    string
		contact CustomerContact
		want    bool
	}{
		{"phone", CustomerContact{Phone: ptr.Ptr("+5511999990000")}, true},
		{"email", CustomerContact{Email: ptr.Ptr("ana@example.com")}, true},
		{"none", CustomerContact{}, false},
		{"empty", CustomerContact{Phone: ptr.Ptr(""), Email: ptr.Ptr("")}, false},
		{"whitespace only", CustomerContact{Phone: ptr.Ptr("   "), Email: ptr.Ptr("\t")}, false},
		{"blank phone with email", CustomerContact{Phone: ptr.Ptr(" "), Email: ptr.Ptr("ana@example.com")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.contact.HasChannel())
		})
	}
}
