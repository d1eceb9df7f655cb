package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Keyer derives deterministic cache keys from request payloads.
//
// Contract:
// - Determinism: equal payloads must produce equal keys, across processes,
//   regardless of map iteration order.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// Key derives a cache key from the request type key and payload.
	Key(typeKey string, payload any) (string, error)
}

// Fingerprinter lets a payload type supply its own canonical form. The
// returned string replaces the payload's serialized representation as the
// hash input; correlation ids and other volatile fields must not appear in
// it.
type Fingerprinter interface {
	CacheFingerprint() string
}

// planCacheSize bounds the per-type field plan memo.
const planCacheSize = 256

// DefaultKeyer generates SHA-256 based cache keys. Struct payloads are
// serialized field by field in sorted name order; unexported fields and
// fields tagged `cache:"-"` are excluded. Field plans are memoized per type
// in a bounded LRU.
type DefaultKeyer struct {
	plans *lru.Cache[reflect.Type, *fieldPlan]
}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return NewDefaultKeyerSized(planCacheSize)
}

// NewDefaultKeyerSized creates a keyer whose field plan memo holds at most
// capacity payload types. Zero or negative selects the default.
func NewDefaultKeyerSized(capacity int) *DefaultKeyer {
	if capacity <= 0 {
		capacity = planCacheSize
	}
	plans, _ := lru.New[reflect.Type, *fieldPlan](capacity)
	return &DefaultKeyer{plans: plans}
}

// Key generates a deterministic cache key.
// Format: cache:<typeKey>:<hash>
// where hash is the first 16 characters of SHA-256(canonical JSON(payload)).
func (k *DefaultKeyer) Key(typeKey string, payload any) (string, error) {
	canonical, err := k.canonicalize(payload)
	if err != nil {
		return "", fmt.Errorf("cache: failed to canonicalize payload: %w", err)
	}

	hash := sha256.Sum256(canonical)
	hashStr := hex.EncodeToString(hash[:8]) // First 8 bytes = 16 hex chars

	return fmt.Sprintf("cache:%s:%s", typeKey, hashStr), nil
}

// canonicalize produces a deterministic JSON representation of the payload.
// Maps and struct fields are sorted by key to ensure consistent ordering.
func (k *DefaultKeyer) canonicalize(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}

	if f, ok := v.(Fingerprinter); ok {
		return []byte(f.CacheFingerprint()), nil
	}

	switch val := v.(type) {
	case map[string]any:
		return k.canonicalizeMap(val)
	case []any:
		return k.canonicalizeSlice(val)
	}

	// Types with custom JSON encoding (time.Time, json.RawMessage) keep it.
	if _, ok := v.(json.Marshaler); ok {
		return json.Marshal(v)
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return []byte("null"), nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		return k.canonicalizeStruct(rv)
	}

	return json.Marshal(v)
}

func (k *DefaultKeyer) canonicalizeMap(m map[string]any) ([]byte, error) {
	// Sort keys
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	// Build ordered JSON object
	result := []byte("{")
	for i, key := range keys {
		if i > 0 {
			result = append(result, ',')
		}

		keyBytes, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		result = append(result, keyBytes...)
		result = append(result, ':')

		valBytes, err := k.canonicalize(m[key])
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, '}')

	return result, nil
}

func (k *DefaultKeyer) canonicalizeSlice(s []any) ([]byte, error) {
	result := []byte("[")
	for i, v := range s {
		if i > 0 {
			result = append(result, ',')
		}

		valBytes, err := k.canonicalize(v)
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, ']')

	return result, nil
}

func (k *DefaultKeyer) canonicalizeStruct(rv reflect.Value) ([]byte, error) {
	plan := k.planFor(rv.Type())

	result := []byte("{")
	for i, f := range plan.fields {
		if i > 0 {
			result = append(result, ',')
		}

		keyBytes, err := json.Marshal(f.name)
		if err != nil {
			return nil, err
		}
		result = append(result, keyBytes...)
		result = append(result, ':')

		valBytes, err := k.canonicalize(rv.FieldByIndex(f.index).Interface())
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, '}')

	return result, nil
}

// fieldPlan lists the cache-significant fields of a struct type, sorted by
// serialized name.
type fieldPlan struct {
	fields []planField
}

type planField struct {
	name  string
	index []int
}

func (k *DefaultKeyer) planFor(t reflect.Type) *fieldPlan {
	if plan, ok := k.plans.Get(t); ok {
		return plan
	}
	plan := buildPlan(t)
	k.plans.Add(t, plan)
	return plan
}

func buildPlan(t reflect.Type) *fieldPlan {
	fields := make([]planField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		switch tag := f.Tag.Get("cache"); tag {
		case "":
		case "-":
			continue
		default:
			name = tag
		}
		fields = append(fields, planField{name: name, index: f.Index})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].name < fields[j].name })
	return &fieldPlan{fields: fields}
}

// Ensure DefaultKeyer implements Keyer
var _ Keyer = (*DefaultKeyer)(nil)
