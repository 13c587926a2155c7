package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// maxBodyBytes bounds request bodies; ranking batches carry full resume texts.
const maxBodyBytes = 16 << 20

// ResumeInput is one document submitted for ranking.
type ResumeInput struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty"`
}

// RankRequest is the body of POST /v1/rank. Exactly one of job_description
// and job_url is required.
type RankRequest struct {
	JobDescription string        `json:"job_description,omitempty" validate:"required_without=JobURL,excluded_with=JobURL"`
	JobURL         string        `json:"job_url,omitempty" validate:"omitempty,http_url"`
	Resumes        []ResumeInput `json:"resumes" validate:"required,min=1,max=1000,dive"`
	TopN           *int          `json:"top_n,omitempty" validate:"omitempty,gte=0"` // nil uses the server default; 0 returns all
	Save           bool          `json:"save,omitempty"` // persist the returned candidates
}

// SkillsRequest is the body of POST /v1/skills.
type SkillsRequest struct {
	Text string `json:"text" validate:"required"`
}

// ClassifyRequest is the body of POST /v1/classify.
type ClassifyRequest struct {
	Text string `json:"text" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeRequest reads a JSON body into T and validates it.
func decodeRequest[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	var req T
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, &ErrValidation{Field: "body", Message: "request body is empty"}
		}
		return req, &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return req, &ErrValidation{Field: fieldPath(fe), Message: fmt.Sprintf("failed '%s' check", fe.Tag())}
		}
		return req, &ErrValidation{Field: "body", Message: err.Error()}
	}
	return req, nil
}

// fieldPath drops the struct name from the namespace: "RankRequest.resumes[0].email" -> "resumes[0].email".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}
