package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractContact(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		filename string
		want     Contact
	}{
		{
			name:     "name email and phone",
			text:     "Jane Doe\njane.doe@example.com | (555) 123-4567\nExperienced data scientist with Python.",
			filename: "jane.txt",
			want:     Contact{Name: "Jane Doe", Email: "jane.doe@example.com", Phone: "(555) 123-4567"},
		},
		{
			name:     "country code",
			text:     "# John Smith\nPhone: +1 555-987-6543",
			filename: "john.md",
			want:     Contact{Name: "John Smith", Phone: "+1 555-987-6543"},
		},
		{
			name:     "falls back to file stem",
			text:     "Experienced software engineer with a decade of backend work\ncontact me at dev@example.org",
			filename: "/resumes/candidate_42.docx",
			want:     Contact{Name: "candidate_42", Email: "dev@example.org"},
		},
		{
			name:     "skips email line",
			text:     "sam@example.com\nSam Lee",
			filename: "x.txt",
			want:     Contact{Name: "Sam Lee", Email: "sam@example.com"},
		},
		{
			name:     "only first three lines",
			text:     "one two three four five\nsix seven eight nine ten\neleven twelve thirteen fourteen fifteen\nPat Kim",
			filename: "pat.txt",
			want:     Contact{Name: "pat"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractContact(tt.text, tt.filename))
		})
	}
}
