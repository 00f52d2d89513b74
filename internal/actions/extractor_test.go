package actions

import "testing"

func TestExtractContact(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		want  ContactExtraction
		found bool
	}{
		{
			name:  "name and mobile",
			text:  "AI: How can I help?\nCaller: Hi, my name is Sarah Jones, call me back on 07911 123 456 please.",
			want:  ContactExtraction{Name: "Sarah Jones", Phone: "07911 123 456"},
			found: true,
		},
		{
			name:  "this is introduction",
			text:  "Caller: Hello, this is Tom from the garage.",
			want:  ContactExtraction{Name: "Tom"},
			found: true,
		},
		{
			name:  "international phone only",
			text:  "Caller: best number is +44 7911 123456.",
			want:  ContactExtraction{Phone: "+44 7911 123456"},
			found: true,
		},
		{
			name:  "email alone is not enough",
			text:  "Caller: just email me at sam@example.co.uk thanks.",
			want:  ContactExtraction{Email: "sam@example.co.uk"},
			found: false,
		},
		{
			name:  "lowercase continuation is not a name",
			text:  "Caller: this is a problem with my boiler.",
			want:  ContactExtraction{},
			found: false,
		},
		{
			name:  "nothing",
			text:  "Caller: I'll ring back later.",
			want:  ContactExtraction{},
			found: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractContact(tc.text)
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
			if got.HasContact() != tc.found {
				t.Fatalf("HasContact() = %v, want %v", got.HasContact(), tc.found)
			}
		})
	}
}
