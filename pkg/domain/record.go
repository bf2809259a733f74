package domain

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Source tags every record produced by the email count pipeline.
const Source = "tomba_email_count"

const (
	fieldDomain = "domain"
	fieldSource = "source"
	fieldError  = "error"
	fieldTotal  = "total"
)

// Field is a single member of a provider payload, kept as raw JSON so that
// fields this program does not know about survive untouched.
type Field struct {
	Key   string
	Value jx.Raw
}

// Payload is the ordered set of fields of the provider's data object.
type Payload []Field

// Get returns the raw value stored under key.
func (p Payload) Get(key string) (jx.Raw, bool) {
	for _, f := range p {
		if f.Key == key {
			return f.Value, true
		}
	}

	return nil, false
}

// Encode writes p as a JSON object in field order.
func (p Payload) Encode(e *jx.Encoder) {
	e.ObjStart()
	for _, f := range p {
		if len(f.Value) == 0 {
			continue
		}
		e.FieldStart(f.Key)
		e.Raw(f.Value)
	}
	e.ObjEnd()
}

// DecodePayload reads a JSON object from d, preserving member order.
// Duplicate keys keep their last value.
func DecodePayload(d *jx.Decoder) (Payload, error) {
	p := Payload{}
	index := map[string]int{}
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		raw, err := d.Raw()
		if err != nil {
			return errors.Wrapf(err, "decode field %q", key)
		}
		value := append(jx.Raw(nil), raw...)

		if i, ok := index[string(key)]; ok {
			p[i].Value = value

			return nil
		}
		index[string(key)] = len(p)
		p = append(p, Field{Key: string(key), Value: value})

		return nil
	}); err != nil {
		return nil, err
	}

	return p, nil
}

// Record is the per-domain output unit. A success record carries the provider
// payload merged with the domain and source; a failure record carries the
// domain, an error message and the source. Records are not mutated after
// construction.
type Record struct {
	// Domain is the input domain the record was produced for.
	Domain string
	// Source identifies the producing pipeline; always Source for new records.
	Source string
	// Error is the failure message. It is empty for success records.
	Error string
	// Payload holds the provider's data fields of a success record.
	Payload Payload
}

// NewSuccess builds a success record from a provider payload.
func NewSuccess(domain string, payload Payload) Record {
	return Record{Domain: domain, Source: Source, Payload: payload}
}

// NewFailure builds a failure record with the given message.
func NewFailure(domain string, message string) Record {
	return Record{Domain: domain, Source: Source, Error: message}
}

// Failed reports whether r is a failure record.
func (r Record) Failed() bool { return r.Error != "" }

// HasError reports whether the encoded record contains an "error" member,
// either because it is a failure record or because the provider payload
// itself carried one.
func (r Record) HasError() bool {
	if r.Failed() {
		return true
	}
	_, ok := r.Payload.Get(fieldError)

	return ok
}

// Total returns the payload's total email count, or 0 when absent or not a number.
func (r Record) Total() int64 {
	raw, ok := r.Payload.Get(fieldTotal)
	if !ok || raw.Type() != jx.Number {
		return 0
	}

	f, err := jx.DecodeBytes(raw).Float64()
	if err != nil {
		return 0
	}

	return int64(f)
}

// Encode writes r as a JSON object. Success records list the payload fields
// first, then domain and source; payload members named domain or source are
// replaced by the record's own values.
func (r Record) Encode(e *jx.Encoder) {
	e.ObjStart()
	if r.Failed() {
		e.FieldStart(fieldDomain)
		e.Str(r.Domain)
		e.FieldStart(fieldError)
		e.Str(r.Error)
		e.FieldStart(fieldSource)
		e.Str(r.Source)
		e.ObjEnd()

		return
	}

	for _, f := range r.Payload {
		if f.Key == fieldDomain || f.Key == fieldSource || len(f.Value) == 0 {
			continue
		}
		e.FieldStart(f.Key)
		e.Raw(f.Value)
	}
	e.FieldStart(fieldDomain)
	e.Str(r.Domain)
	e.FieldStart(fieldSource)
	e.Str(r.Source)
	e.ObjEnd()
}

// MarshalJSON implements json.Marshaler.
func (r Record) MarshalJSON() ([]byte, error) {
	e := &jx.Encoder{}
	r.Encode(e)

	return e.Bytes(), nil
}

// Decode reads a record previously written by Encode. An object whose only
// members are domain, source and a string error is a failure record; anything
// else is a success record.
func (r *Record) Decode(d *jx.Decoder) error {
	p, err := DecodePayload(d)
	if err != nil {
		return errors.Wrap(err, "decode record")
	}

	out := Record{}
	rest := Payload{}
	for _, f := range p {
		switch f.Key {
		case fieldDomain:
			if out.Domain, err = jx.DecodeBytes(f.Value).Str(); err != nil {
				return errors.Wrap(err, "decode domain")
			}
		case fieldSource:
			if out.Source, err = jx.DecodeBytes(f.Value).Str(); err != nil {
				return errors.Wrap(err, "decode source")
			}
		default:
			rest = append(rest, f)
		}
	}

	if len(rest) == 1 && rest[0].Key == fieldError && rest[0].Value.Type() == jx.String {
		if out.Error, err = jx.DecodeBytes(rest[0].Value).Str(); err != nil {
			return errors.Wrap(err, "decode error")
		}
	}
	if !out.Failed() {
		out.Payload = rest
	}

	*r = out

	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Record) UnmarshalJSON(data []byte) error {
	return r.Decode(jx.DecodeBytes(data))
}

// Summary is the end-of-run tally derived from the result records.
type Summary struct {
	// Total is the number of input domains, processed or not.
	Total int
	// Successful counts records without an error member.
	Successful int
	// Failed counts records with an error member.
	Failed int
}

// Summarize computes the Summary of a run over total input domains.
func Summarize(total int, records []Record) Summary {
	s := Summary{Total: total}
	for _, r := range records {
		if r.HasError() {
			s.Failed++

			continue
		}
		s.Successful++
	}

	return s
}
