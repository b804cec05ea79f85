package task

import "strings"

const (
	TitleMaxLen       = 100
	DescriptionMaxLen = 500
)

// CreateRequest is the raw input for task creation.
type CreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PatchRequest is the raw input for a partial update. Nil means the field is
// absent; present fields are validated individually.
type PatchRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// Patch is a validated, normalized partial update.
type Patch struct {
	Title       *string
	Description *string
	Status      *Status
}

// IsEmpty reports whether no recognized field is present.
func (p PatchRequest) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil
}

// ValidateCreate checks and normalizes raw creation input. String fields are
// trimmed before emptiness and length checks. It performs no I/O.
func ValidateCreate(raw CreateRequest) (CreateRequest, error) {
	title := strings.TrimSpace(raw.Title)
	description := strings.TrimSpace(raw.Description)
	if title == "" {
		return CreateRequest{}, newMissingFieldError("title")
	}
	if description == "" {
		return CreateRequest{}, newMissingFieldError("description")
	}
	if len([]rune(title)) > TitleMaxLen {
		return CreateRequest{}, newFieldTooLongError("title", TitleMaxLen)
	}
	if len([]rune(description)) > DescriptionMaxLen {
		return CreateRequest{}, newFieldTooLongError("description", DescriptionMaxLen)
	}
	return CreateRequest{Title: title, Description: description}, nil
}

// ValidatePatch checks and normalizes a raw partial update. A patch with zero
// recognized fields is rejected outright; present fields are trimmed and
// bounded like at creation, and a present status must be one of the allowed
// values. It performs no I/O.
func ValidatePatch(raw PatchRequest) (Patch, error) {
	if raw.IsEmpty() {
		return Patch{}, newEmptyPatchError()
	}

	var patch Patch
	if raw.Title != nil {
		title := strings.TrimSpace(*raw.Title)
		if title == "" {
			return Patch{}, newMissingFieldError("title")
		}
		if len([]rune(title)) > TitleMaxLen {
			return Patch{}, newFieldTooLongError("title", TitleMaxLen)
		}
		patch.Title = &title
	}
	if raw.Description != nil {
		description := strings.TrimSpace(*raw.Description)
		if description == "" {
			return Patch{}, newMissingFieldError("description")
		}
		if len([]rune(description)) > DescriptionMaxLen {
			return Patch{}, newFieldTooLongError("description", DescriptionMaxLen)
		}
		patch.Description = &description
	}
	if raw.Status != nil {
		status, err := ParseStatus(*raw.Status)
		if err != nil {
			return Patch{}, err
		}
		patch.Status = &status
	}
	return patch, nil
}

// ParseStatus validates a raw status value against the closed enumeration.
// Values are never coerced or defaulted.
func ParseStatus(value string) (Status, error) {
	s := Status(strings.TrimSpace(value))
	if !s.valid() {
		return "", newInvalidStatusError(value)
	}
	return s, nil
}
