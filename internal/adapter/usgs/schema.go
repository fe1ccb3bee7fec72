package usgs

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed feed.schema.json
var feedSchemaJSON []byte

const feedSchemaURL = "feed.schema.json"

var (
	feedSchemaOnce sync.Once
	feedSchema     *jsonschema.Schema
	feedSchemaErr  error
)

// SchemaViolation is one place where a feed breaks the summary feed schema.
type SchemaViolation struct {
	Location string // JSON pointer into the feed, "" for the root
	Message  string
}

func (v SchemaViolation) String() string {
	loc := v.Location
	if loc == "" {
		loc = "/"
	}
	return loc + ": " + v.Message
}

// ValidateFeed checks data against the summary feed schema. It returns the
// violations found, or an error if data is not JSON at all.
func ValidateFeed(data []byte) ([]SchemaViolation, error) {
	schema, err := compiledFeedSchema()
	if err != nil {
		return nil, err
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	err = schema.Validate(doc)
	if err == nil {
		return nil, nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("validate feed: %w", err)
	}

	var out []SchemaViolation
	collectViolations(ve, &out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Location < out[j].Location })
	return out, nil
}

// collectViolations flattens the error tree to its leaves, which carry the
// specific failures.
func collectViolations(ve *jsonschema.ValidationError, out *[]SchemaViolation) {
	if len(ve.Causes) == 0 {
		*out = append(*out, SchemaViolation{Location: ve.InstanceLocation, Message: ve.Message})
		return
	}
	for _, c := range ve.Causes {
		collectViolations(c, out)
	}
}

func compiledFeedSchema() (*jsonschema.Schema, error) {
	feedSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(feedSchemaURL, bytes.NewReader(feedSchemaJSON)); err != nil {
			feedSchemaErr = fmt.Errorf("load feed schema: %w", err)
			return
		}
		feedSchema, feedSchemaErr = compiler.Compile(feedSchemaURL)
	})
	return feedSchema, feedSchemaErr
}
