package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMove(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		malformed bool
		wantErr   error
		x, y      int
	}{
		{name: "Valid", data: `{"x":1,"y":2}`, x: 1, y: 2},
		{name: "IntegralFloat", data: `{"x":2.0,"y":0}`, x: 2, y: 0},
		{name: "NotJSON", data: `x=1`, malformed: true},
		{name: "JSONArray", data: `[1,2]`, malformed: true},
		{name: "Null", data: `null`, malformed: true},
		{name: "Empty", data: ``, malformed: true},
		{name: "NumberLiteral", data: ` 7 `, malformed: true},
		{name: "EmptyObject", data: `{}`, wantErr: ErrOutOfRange},
		{name: "MissingY", data: `{"x":1}`, wantErr: ErrOutOfRange},
		{name: "NullX", data: `{"x":null,"y":1}`, wantErr: ErrOutOfRange},
		{name: "Fractional", data: `{"x":1.5,"y":1}`, wantErr: ErrOutOfRange},
		{name: "StringCoordinate", data: `{"x":"1","y":1}`, wantErr: ErrOutOfRange},
		{name: "OffBoard", data: `{"x":0,"y":3}`, wantErr: ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := DecodeMove([]byte(tt.data))
			if tt.malformed {
				assert.ErrorIs(t, err, ErrMalformedMessage)
				return
			}
			require.NoError(t, err)

			x, y, err := cmd.Coordinates()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.x, x)
			assert.Equal(t, tt.y, y)
		})
	}
}

func TestDecodeChat(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
		ok   bool
	}{
		{name: "Valid", data: `{"message":"hello"}`, want: "hello", ok: true},
		{name: "KeepsWhitespace", data: `{"message":"  hi  "}`, want: "  hi  ", ok: true},
		{name: "Missing", data: `{}`},
		{name: "Empty", data: `{"message":""}`},
		{name: "NotString", data: `{"message":42}`},
		{name: "NotJSON", data: `hello`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := DecodeChat([]byte(tt.data))
			if !tt.ok {
				assert.ErrorIs(t, err, ErrMalformedMessage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd.Message)
		})
	}
}
