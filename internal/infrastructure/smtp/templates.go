package smtp

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/moodgarden/verify-api/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var subjects = map[domain.Purpose]string{
	domain.PurposeVerification:  "Your Verification Code",
	domain.PurposePasswordReset: "Password Reset Request",
}

type codeData struct {
	Code    string
	Minutes int
	Year    int
}

// CodeMessage renders the e-mail carrying code for the given purpose.
func CodeMessage(purpose domain.Purpose, to, code string, ttl time.Duration, now time.Time) (Message, error) {
	subject, ok := subjects[purpose]
	if !ok {
		return Message{}, fmt.Errorf("no template for purpose %q", purpose)
	}
	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, string(purpose)+".html", codeData{
		Code:    code,
		Minutes: int(ttl / time.Minute),
		Year:    now.Year(),
	})
	if err != nil {
		return Message{}, fmt.Errorf("render %s email: %w", purpose, err)
	}
	return Message{To: to, Subject: subject, HTML: buf.String()}, nil
}
