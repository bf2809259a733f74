package domain_test

import (
	"emailcount/pkg/domain"
	"encoding/json"
	"testing"

	"github.com/go-faster/jx"
	"github.com/stretchr/testify/require"
)

func decodePayload(t *testing.T, s string) domain.Payload {
	t.Helper()

	p, err := domain.DecodePayload(jx.DecodeStr(s))
	require.NoError(t, err)

	return p
}

func TestDecodePayload_PreservesOrder(t *testing.T) {
	p := decodePayload(t, `{"total":5,"personal_emails":3,"department":{"it":1},"total":7}`)

	keys := make([]string, 0, len(p))
	for _, f := range p {
		keys = append(keys, f.Key)
	}
	require.Equal(t, []string{"total", "personal_emails", "department"}, keys)

	raw, ok := p.Get("total")
	require.True(t, ok)
	require.Equal(t, "7", raw.String())

	_, ok = p.Get("missing")
	require.False(t, ok)
}

func TestDecodePayload_NotAnObject(t *testing.T) {
	_, err := domain.DecodePayload(jx.DecodeStr(`[1,2]`))
	require.Error(t, err)
}

func TestRecord_SuccessJSON(t *testing.T) {
	r := domain.NewSuccess("a.com", decodePayload(t, `{"total":5}`))

	b, err := json.Marshal(r)
	require.NoError(t, err)
	require.JSONEq(t, `{"total":5,"domain":"a.com","source":"tomba_email_count"}`, string(b))
	require.Equal(t, `{"total":5,"domain":"a.com","source":"tomba_email_count"}`, string(b))
	require.Equal(t, int64(5), r.Total())
	require.False(t, r.HasError())
}

func TestRecord_LiteralFieldsOverridePayload(t *testing.T) {
	r := domain.NewSuccess("a.com", decodePayload(t, `{"domain":"other.com","source":"x","total":1}`))

	b, err := json.Marshal(r)
	require.NoError(t, err)
	require.Equal(t, `{"total":1,"domain":"a.com","source":"tomba_email_count"}`, string(b))
}

func TestRecord_FailureJSON(t *testing.T) {
	r := domain.NewFailure("x.com", "quota exceeded")

	b, err := json.Marshal(r)
	require.NoError(t, err)
	require.Equal(t, `{"domain":"x.com","error":"quota exceeded","source":"tomba_email_count"}`, string(b))
	require.True(t, r.Failed())
	require.True(t, r.HasError())
	require.Equal(t, int64(0), r.Total())
}

func TestRecord_PayloadErrorMemberCountsAsError(t *testing.T) {
	r := domain.NewSuccess("a.com", decodePayload(t, `{"total":2,"error":null}`))

	require.False(t, r.Failed())
	require.True(t, r.HasError())
}

func TestRecord_Decode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want domain.Record
	}{
		{
			name: "failure",
			in:   `{"domain":"x.com","error":"boom","source":"tomba_email_count"}`,
			want: domain.NewFailure("x.com", "boom"),
		},
		{
			name: "success",
			in:   `{"total":5,"domain":"a.com","source":"tomba_email_count"}`,
			want: domain.NewSuccess("a.com", domain.Payload{{Key: "total", Value: jx.Raw("5")}}),
		},
		{
			name: "success with extra error member",
			in:   `{"total":5,"error":"partial","domain":"a.com","source":"tomba_email_count"}`,
			want: domain.NewSuccess("a.com", domain.Payload{
				{Key: "total", Value: jx.Raw("5")},
				{Key: "error", Value: jx.Raw(`"partial"`)},
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got domain.Record
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRecord_TotalNotANumber(t *testing.T) {
	r := domain.NewSuccess("a.com", decodePayload(t, `{"total":"many"}`))
	require.Equal(t, int64(0), r.Total())
}

func TestSummarize(t *testing.T) {
	records := []domain.Record{
		domain.NewSuccess("a.com", decodePayload(t, `{"total":1}`)),
		domain.NewFailure("b.com", "boom"),
		domain.NewSuccess("c.com", decodePayload(t, `{"total":3}`)),
	}

	require.Equal(t, domain.Summary{Total: 4, Successful: 2, Failed: 1}, domain.Summarize(4, records))
	require.Equal(t, domain.Summary{}, domain.Summarize(0, nil))
}

func TestPayload_Encode(t *testing.T) {
	p := decodePayload(t, `{"total":3,"department":{"it":1}}`)

	e := &jx.Encoder{}
	p.Encode(e)
	require.Equal(t, `{"total":3,"department":{"it":1}}`, e.String())

	e.Reset()
	domain.Payload(nil).Encode(e)
	require.Equal(t, `{}`, e.String())
}
