// Package attach normalizes uploaded files into message-compatible content:
// UTF-8 text for text-like formats, a base64 JPEG payload for images. Every
// failure path yields a typed error; nothing is swallowed.
package attach

import (
	"path/filepath"
	"strings"
)

// File is an uploaded attachment before normalization.
type File struct {
	Name      string
	MediaType string
	Bytes     []byte
}

// Normalized is the result of running a File through the Normalizer. Exactly
// one of Text or ImageData is set.
type Normalized struct {
	Name      string
	MediaType string
	SizeBytes int64
	Text      string
	ImageData string // base64-encoded JPEG
}

func (n Normalized) IsImage() bool { return n.ImageData != "" }

// Decoder converts raw attachment bytes into normalized content.
type Decoder func(name string, data []byte) (Normalized, error)

// Policy is the type/size policy enforced before any decoding happens.
type Policy struct {
	MaxBytes          int64
	MaxImageDimension int
	JPEGQuality       int
}

func DefaultPolicy() Policy {
	return Policy{MaxBytes: 5 << 20, MaxImageDimension: 1024, JPEGQuality: 85}
}

// Normalizer dispatches files to decoders keyed by extension. Register adds
// or replaces a decoder, so new formats don't require touching the dispatch.
type Normalizer struct {
	policy   Policy
	decoders map[string]Decoder
}

func NewNormalizer(policy Policy) *Normalizer {
	if policy.MaxBytes <= 0 {
		policy.MaxBytes = DefaultPolicy().MaxBytes
	}
	if policy.MaxImageDimension <= 0 {
		policy.MaxImageDimension = DefaultPolicy().MaxImageDimension
	}
	if policy.JPEGQuality <= 0 {
		policy.JPEGQuality = DefaultPolicy().JPEGQuality
	}

	n := &Normalizer{policy: policy, decoders: make(map[string]Decoder)}
	for _, ext := range []string{"txt", "md", "py"} {
		n.Register(ext, decodeText)
	}
	n.Register("csv", decodeCSV)
	n.Register("json", decodeJSON)
	n.Register("pdf", decodePDF)
	for _, ext := range []string{"png", "jpg", "jpeg"} {
		n.Register(ext, n.decodeImage)
	}
	return n
}

func (n *Normalizer) Register(ext string, dec Decoder) {
	n.decoders[strings.ToLower(ext)] = dec
}

// Normalize applies the policy and the extension's decoder. It is a pure
// transform: no network or storage access.
func (n *Normalizer) Normalize(f File) (Normalized, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(f.Name), "."))
	dec, ok := n.decoders[ext]
	if !ok {
		return Normalized{}, &UnsupportedTypeError{Name: f.Name, Ext: ext}
	}
	size := int64(len(f.Bytes))
	if size > n.policy.MaxBytes {
		return Normalized{}, &TooLargeError{Name: f.Name, Size: size, Limit: n.policy.MaxBytes}
	}
	out, err := dec(f.Name, f.Bytes)
	if err != nil {
		return Normalized{}, err
	}
	out.Name = f.Name
	out.SizeBytes = size
	return out, nil
}
