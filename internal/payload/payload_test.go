package payload

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hast/model"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []model.Record
	}{
		{
			name: "empty",
			text: "",
			want: nil,
		},
		{
			name: "single line",
			text: "h1 a.bin",
			want: []model.Record{{Hash: "h1", Name: "a.bin"}},
		},
		{
			name: "split at first space",
			text: "h1 /opt/My Documents/file.txt\n",
			want: []model.Record{{Hash: "h1", Name: "/opt/My Documents/file.txt"}},
		},
		{
			name: "trims both parts",
			text: "h1   a.bin  \r\nh2\tb.bin \n",
			want: []model.Record{
				{Hash: "h1", Name: "a.bin"},
				{Hash: "h2\tb.bin", Name: ""},
			},
		},
		{
			name: "lines without space dropped",
			text: "nospace\nh1 a\n\nalso-none\r\nh2 b",
			want: []model.Record{
				{Hash: "h1", Name: "a"},
				{Hash: "h2", Name: "b"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.text))
		})
	}
}

func TestPayload_Decode(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		p := Payload{Data: base64.StdEncoding.EncodeToString([]byte("h1 a.bin\nh2 b.bin\n"))}
		records, err := p.Decode()
		require.NoError(t, err)
		assert.Equal(t, []model.Record{{Hash: "h1", Name: "a.bin"}, {Hash: "h2", Name: "b.bin"}}, records)
	})

	t.Run("invalid base64", func(t *testing.T) {
		_, err := Payload{Data: "not base64!"}.Decode()
		assert.ErrorIs(t, err, ErrBase64)
	})

	t.Run("invalid utf8", func(t *testing.T) {
		p := Payload{Data: base64.StdEncoding.EncodeToString([]byte{'h', ' ', 0xff, 0xfe})}
		_, err := p.Decode()
		assert.ErrorIs(t, err, ErrUTF8)
	})
}

func TestEncode(t *testing.T) {
	records := []model.Record{{Hash: "h1", Name: "a b.bin"}, {Hash: "h2", Name: "c"}}

	decoded, err := Encode(records).Decode()
	require.NoError(t, err)
	assert.Equal(t, records, decoded)
}

func TestRead(t *testing.T) {
	records, err := Read(strings.NewReader("h1 a\nh2 b\n"))
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
