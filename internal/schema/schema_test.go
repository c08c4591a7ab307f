package schema

import "testing"

func TestValidateChat(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid with personality", `{"message":"hello","personality":"friend"}`, false},
		{"valid without personality", `{"message":"hello"}`, false},
		{"empty message", `{"message":""}`, true},
		{"missing message", `{"personality":"friend"}`, true},
		{"unknown personality", `{"message":"hi","personality":"villain"}`, true},
		{"extra field", `{"message":"hi","shout":true}`, true},
		{"not json", `message=hi`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChat([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateChat(%s) error = %v, wantErr %v", tt.body, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSpeech(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"text":"hello there","personality":"zen"}`, false},
		{"missing personality", `{"text":"hello"}`, true},
		{"empty text", `{"text":"","personality":"zen"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSpeech([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSpeech(%s) error = %v, wantErr %v", tt.body, err, tt.wantErr)
			}
		})
	}
}
