package chat

import "testing"

func TestDisplayName(t *testing.T) {
	tests := []struct {
		user User
		want string
	}{
		{User{FirstName: "Ada", Username: "ada"}, "Ada"},
		{User{FirstName: "  ", Username: "ada"}, "@ada"},
		{User{}, "there"},
	}
	for _, tt := range tests {
		if got := tt.user.DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%+v) = %q, want %q", tt.user, got, tt.want)
		}
	}
}
