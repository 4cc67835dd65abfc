package attach

import "fmt"

// UnsupportedTypeError reports a file extension outside the allow-list.
type UnsupportedTypeError struct {
	Name string
	Ext  string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("%s: unsupported attachment type %q", e.Name, e.Ext)
}

// TooLargeError reports an attachment over the configured size ceiling.
type TooLargeError struct {
	Name  string
	Size  int64
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("%s: attachment is %d bytes, limit is %d", e.Name, e.Size, e.Limit)
}

// DecodeError reports bytes that are not valid UTF-8 for a text attachment.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode failed: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IngestionError reports a per-format parse failure, carrying the file name
// and the underlying parser diagnostic.
type IngestionError struct {
	Name string
	Err  error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("%s: ingestion failed: %v", e.Name, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }
