package tenant

import "testing"

func TestSubdomainFromHost(t *testing.T) {
	cases := []struct {
		host string
		want string
	}{
		{"aisha.swiftstore.com", "aisha"},
		{"aisha.swiftstore.com:3000", "aisha"},
		{"heri.swiftstore.dev.localhost", "heri"},
		{"ACME.SwiftStore.com", "acme"},
		{"aisha.swiftstore.com.", "aisha"},

		// Apex and aliases
		{"swiftstore.com", ""},
		{"www.swiftstore.com", ""},
		{"www.swiftstore.com:8080", ""},

		// Local development hosts
		{"localhost", ""},
		{"localhost:3000", ""},
		{"127.0.0.1", ""},
		{"127.0.0.1:3000", ""},
		{"10.0.0.4", ""},

		// Degenerate inputs
		{"", ""},
		{":3000", ""},
		{"..", ""},
	}

	for _, c := range cases {
		if got := SubdomainFromHost(c.host); got != c.want {
			t.Errorf("SubdomainFromHost(%q) = %q, want %q", c.host, got, c.want)
		}
	}
}
