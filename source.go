package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thorfork/forkctl/internal/genesis"
)

// errDocumentAbsent reports that a document location holds nothing.
var errDocumentAbsent = errors.New("document absent")

type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// documentReader reads documents from local paths or s3://bucket/key URIs.
// The S3 client is only created when an S3 location is first read.
type documentReader struct {
	s3    objectGetter
	newS3 func(ctx context.Context) (objectGetter, error)
}

func newDocumentReader() *documentReader {
	return &documentReader{
		newS3: func(ctx context.Context) (objectGetter, error) {
			cfg, err := awsconfig.LoadDefaultConfig(ctx)
			if err != nil {
				return nil, fmt.Errorf("loading AWS config: %w", err)
			}
			return s3.NewFromConfig(cfg), nil
		},
	}
}

func isS3Location(location string) bool {
	return strings.HasPrefix(location, "s3://")
}

// Read returns the content at location, or errDocumentAbsent when there is
// no such file or object.
func (r *documentReader) Read(ctx context.Context, location string) ([]byte, error) {
	if !isS3Location(location) {
		content, err := os.ReadFile(location)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", errDocumentAbsent, location)
		}
		return content, err
	}

	bucket, key, err := parseS3Location(location)
	if err != nil {
		return nil, err
	}
	if r.s3 == nil {
		if r.s3, err = r.newS3(ctx); err != nil {
			return nil, err
		}
	}
	out, err := r.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", errDocumentAbsent, location)
		}
		return nil, fmt.Errorf("getting %s: %w", location, err)
	}
	defer out.Body.Close()
	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", location, err)
	}
	return content, nil
}

func parseS3Location(location string) (bucket, key string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("parsing S3 location: %w", err)
	}
	bucket, key = u.Host, strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid S3 location %q, want s3://bucket/key", location)
	}
	return bucket, key, nil
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

// decodeDiff parses a diff document. The format follows the extension of
// location: TOML and YAML diffs are converted to their JSON equivalent and
// anything else is parsed as JSON.
func decodeDiff(location string, content []byte) (genesis.Document, error) {
	switch strings.ToLower(filepath.Ext(location)) {
	case ".toml":
		return decodeTOMLDiff(content)
	case ".yaml", ".yml":
		return decodeYAMLDiff(content)
	default:
		doc, err := genesis.Decode(content)
		if err != nil {
			return nil, fmt.Errorf("parsing diff as JSON: %w", err)
		}
		return doc, nil
	}
}

var tomlWideInteger = regexp.MustCompile(`(?m)=\s*([+-]?[0-9][0-9_]{18,})\s*(?:[,}#]|$)`)

func decodeTOMLDiff(content []byte) (genesis.Document, error) {
	patch := make(map[string]any)
	if err := toml.Unmarshal(content, &patch); err != nil {
		for _, match := range tomlWideInteger.FindAllSubmatch(content, -1) {
			literal := strings.ReplaceAll(string(match[1]), "_", "")
			if _, rangeErr := strconv.ParseInt(literal, 10, 64); rangeErr != nil {
				return nil, fmt.Errorf("parsing diff as TOML: integer %s does not fit in 64 bits, quote it as a string: %w", literal, err)
			}
		}
		return nil, fmt.Errorf("parsing diff as TOML: %w", err)
	}

	asJSON, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("converting diff to JSON: %w", err)
	}
	doc, err := genesis.Decode(asJSON)
	if err != nil {
		return nil, fmt.Errorf("parsing converted diff: %w", err)
	}
	return doc, nil
}

// decodeYAMLDiff walks the YAML node tree so that numbers keep their literal
// text; decoding into any would round wide integers through float64.
func decodeYAMLDiff(content []byte) (genesis.Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(content, &root); err != nil {
		return nil, fmt.Errorf("parsing diff as YAML: %w", err)
	}
	v, err := yamlValue(&root)
	if err != nil {
		return nil, fmt.Errorf("parsing diff as YAML: %w", err)
	}
	switch t := v.(type) {
	case nil:
		return genesis.Document{}, nil
	case map[string]any:
		return t, nil
	default:
		return nil, fmt.Errorf("parsing diff as YAML: expected a mapping, got %T", v)
	}
}

var (
	jsonInteger = regexp.MustCompile(`^-?(0|[1-9][0-9]*)$`)
	jsonFloat   = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)
)

func yamlValue(node *yaml.Node) (any, error) {
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return yamlValue(node.Content[0])
	case yaml.AliasNode:
		return yamlValue(node.Alias)
	case yaml.SequenceNode:
		out := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			v, err := yamlValue(child)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		out := make(map[string]any, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			v, err := yamlValue(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			if node.Content[i].ShortTag() == "!!merge" {
				merged, _ := v.(map[string]any)
				for k, mv := range merged {
					if _, exists := out[k]; !exists {
						out[k] = mv
					}
				}
				continue
			}
			out[node.Content[i].Value] = v
		}
		return out, nil
	case yaml.ScalarNode:
		return yamlScalar(node)
	}
	return nil, fmt.Errorf("unsupported YAML node at line %d", node.Line)
}

func yamlScalar(node *yaml.Node) (any, error) {
	switch node.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int":
		if literal := strings.TrimPrefix(node.Value, "+"); jsonInteger.MatchString(literal) {
			return json.Number(literal), nil
		}
		var i int64
		if err := node.Decode(&i); err != nil {
			return nil, fmt.Errorf("integer %q at line %d: %w", node.Value, node.Line, err)
		}
		return json.Number(strconv.FormatInt(i, 10)), nil
	case "!!float":
		if literal := strings.TrimPrefix(node.Value, "+"); jsonFloat.MatchString(literal) {
			return json.Number(literal), nil
		}
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, err
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, fmt.Errorf("float %q at line %d has no JSON form", node.Value, node.Line)
		}
		return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
	default:
		return node.Value, nil
	}
}
