package jsonx

import (
	"io"

	jsoniter "github.com/json-iterator/go"
)

var jsonx = jsoniter.ConfigCompatibleWithStandardLibrary

func Unmarshal(data []byte, v interface{}) error {
	return jsonx.Unmarshal(data, v)
}

// NewIndentEncoder returns an encoder writing two-space indented JSON to w
func NewIndentEncoder(w io.Writer) *jsoniter.Encoder {
	enc := jsonx.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc
}
