package ingestion

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

var (
	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phoneRe = regexp.MustCompile(`(?:^|[^\d+])((?:\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4})\b`)
)

// nameLines is how many leading lines are considered for the candidate name.
const nameLines = 3

// Contact holds the applicant details found in a resume.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// ExtractContact finds a name, email and phone number in resume text. The name
// is the first short line near the top, or the file name without extension.
func ExtractContact(text, filename string) Contact {
	c := Contact{
		Name:  extractName(text),
		Email: emailRe.FindString(text),
	}
	if m := phoneRe.FindStringSubmatch(text); m != nil {
		c.Phone = strings.TrimSpace(m[1])
	}
	if c.Name == "" {
		c.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	return c
}

func extractName(text string) string {
	seen := 0
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "#"))
		if line == "" {
			continue
		}
		seen++
		if seen > nameLines {
			break
		}
		if len(strings.Fields(line)) <= 4 && !strings.Contains(line, "@") && strings.IndexFunc(line, unicode.IsLetter) >= 0 &&
			strings.IndexFunc(line, unicode.IsDigit) < 0 {
			return line
		}
	}
	return ""
}
