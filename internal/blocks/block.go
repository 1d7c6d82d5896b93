package blocks

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	schemavalidation "github.com/pharmaweb/sitecms/internal/validation"
)

// Kind discriminates the content carried by a Block.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindImage, KindVideo:
		return true
	default:
		return false
	}
}

var (
	ErrIndexOutOfRange  = errors.New("blocks: index out of range")
	ErrUploadInFlight   = errors.New("blocks: an image upload is already in progress")
	ErrUploaderRequired = errors.New("blocks: image uploader not configured")
	ErrUploadURLMissing = errors.New("blocks: upload returned an empty public url")
)

// Block is one unit of authored content. Value holds trusted HTML for text
// blocks and a URL for image and video blocks.
type Block struct {
	Kind    Kind   `json:"type"`
	Value   string `json:"value"`
	Caption string `json:"caption,omitempty"`
}

// Text returns a text block.
func Text(html string) Block { return Block{Kind: KindText, Value: html} }

// Image returns an image block.
func Image(url, caption string) Block { return Block{Kind: KindImage, Value: url, Caption: caption} }

// Video returns a video block.
func Video(url, caption string) Block { return Block{Kind: KindVideo, Value: url, Caption: caption} }

// Validate applies the save-time rules: known kind and non-blank value.
func (b Block) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Kind,
			validation.Required,
			validation.In(KindText, KindImage, KindVideo).Error("must be text, image or video"),
		),
		validation.Field(&b.Value,
			validation.Required,
			validation.By(notBlank),
		),
	)
}

func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return validation.NewError("validation_blank", "cannot be blank")
	}
	return nil
}

// List is an ordered sequence of blocks, persisted as a JSON array.
type List []Block

// Clone returns a copy that shares no backing array with l.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	copy(out, l)
	return out
}

// Empty reports whether the list has no blocks.
func (l List) Empty() bool { return len(l) == 0 }

// Validate checks every block, keying failures by index.
func (l List) Validate() error {
	errs := validation.Errors{}
	for i, block := range l {
		if err := block.Validate(); err != nil {
			errs[strconv.Itoa(i)] = err
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Decode parses a persisted content_blocks payload. Blank input and JSON null
// decode to an empty list.
func Decode(raw []byte) (List, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return List{}, nil
	}
	if err := schemavalidation.ContentBlocks().ValidateJSON(trimmed); err != nil {
		return nil, fmt.Errorf("blocks: decode: %w", err)
	}
	var decoded []Block
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return nil, fmt.Errorf("blocks: decode: %w", err)
	}
	return List(decoded), nil
}

// UnmarshalJSON routes through Decode so API payloads get schema validation.
func (l *List) UnmarshalJSON(data []byte) error {
	type plain List
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}
	if err := schemavalidation.ContentBlocks().ValidateJSON(trimmed); err != nil {
		return err
	}
	var decoded plain
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return err
	}
	*l = List(decoded)
	return nil
}

// Value stores empty lists as NULL.
func (l List) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	encoded, err := json.Marshal([]Block(l))
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

// Scan implements sql.Scanner.
func (l *List) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return l.scanBytes(v)
	case string:
		return l.scanBytes([]byte(v))
	default:
		return fmt.Errorf("blocks: cannot scan %T into List", src)
	}
}

func (l *List) scanBytes(raw []byte) error {
	decoded, err := Decode(raw)
	if err != nil {
		return err
	}
	if len(decoded) == 0 {
		decoded = nil
	}
	*l = decoded
	return nil
}
