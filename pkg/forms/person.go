package forms

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	ferrors "github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/family"
)

// MaxUploadSize bounds a submitted person form, photo included.
const MaxUploadSize = 10 << 20

// Photo is a selected profile photo.
type Photo struct {
	Filename    string
	ContentType string
	Data        []byte
}

// PersonForm holds the editable fields of a person as entered.
type PersonForm struct {
	FullName    string `form:"full_name" validate:"notblank,max=255"`
	Gender      string `form:"gender" validate:"required,gender"`
	DateOfBirth string `form:"date_of_birth" validate:"isodate"`
	DateOfDeath string `form:"date_of_death" validate:"isodate"`
	Notes       string `form:"notes"`
	Photo       *Photo `form:"-"`
}

// NewPersonForm returns an empty form with the default gender selected.
func NewPersonForm() PersonForm {
	return PersonForm{Gender: string(family.GenderMale)}
}

// FromPerson pre-fills a form for editing p. The current photo is not
// re-uploaded, so Photo stays nil.
func FromPerson(p family.Person) PersonForm {
	return PersonForm{
		FullName:    p.FullName,
		Gender:      string(p.Gender),
		DateOfBirth: p.DateOfBirth.String(),
		DateOfDeath: p.DateOfDeath.String(),
		Notes:       p.Notes,
	}
}

// Validate checks the form. The error, if any, is [Errors].
func (f PersonForm) Validate() error {
	if err := check(f); err != nil {
		return err
	}
	if f.Photo != nil {
		if err := ferrors.ValidateFilename(f.Photo.Filename); err != nil {
			return Errors{"profile_photo": ferrors.UserMessage(err)}
		}
		if !strings.HasPrefix(f.Photo.ContentType, "image/") {
			return Errors{"profile_photo": "profile photo must be an image"}
		}
	}
	return nil
}

// Encode builds the multipart request body.
func (f PersonForm) Encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct {
		name, value string
		always      bool
	}{
		{"full_name", strings.TrimSpace(f.FullName), true},
		{"gender", f.Gender, true},
		{"date_of_birth", strings.TrimSpace(f.DateOfBirth), false},
		{"date_of_death", strings.TrimSpace(f.DateOfDeath), false},
		{"notes", f.Notes, false},
	}
	for _, fld := range fields {
		if !fld.always && strings.TrimSpace(fld.value) == "" {
			continue
		}
		if err := w.WriteField(fld.name, fld.value); err != nil {
			return nil, "", err
		}
	}

	if f.Photo != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="profile_photo"; filename=%q`, f.Photo.Filename))
		h.Set("Content-Type", f.Photo.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Photo.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// FromRequest reads a submitted person form. Both multipart and URL-encoded
// bodies are accepted; a file input left empty yields a nil Photo.
func FromRequest(r *http.Request) (PersonForm, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			return PersonForm{}, ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "could not read form")
		}
		if err := r.ParseForm(); err != nil {
			return PersonForm{}, ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "could not read form")
		}
	}

	f := PersonForm{
		FullName:    r.PostFormValue("full_name"),
		Gender:      r.PostFormValue("gender"),
		DateOfBirth: r.PostFormValue("date_of_birth"),
		DateOfDeath: r.PostFormValue("date_of_death"),
		Notes:       r.PostFormValue("notes"),
	}

	photo, err := readPhoto(r)
	if err != nil {
		return f, err
	}
	f.Photo = photo
	return f, nil
}

func readPhoto(r *http.Request) (*Photo, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile("profile_photo")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "could not read profile photo")
	}
	defer file.Close()

	if header.Filename == "" || header.Size == 0 {
		return nil, nil
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "could not read profile photo")
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return &Photo{Filename: header.Filename, ContentType: contentType, Data: data}, nil
}
