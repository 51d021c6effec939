package codec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/pkg/codec"
)

func TestNewEncoder(t *testing.T) {
	t.Parallel()

	t.Run("resolves known encoders", func(t *testing.T) {
		t.Parallel()
		for name, want := range map[string]string{
			"":       codec.EncoderBase64,
			"base64": codec.EncoderBase64,
			"base16": codec.EncoderBase16,
			"hex":    codec.EncoderBase16,
		} {
			enc, err := codec.NewEncoder(name)
			require.NoError(t, err)
			assert.Equal(t, want, enc.Name())
		}
	})

	t.Run("rejects unknown encoder", func(t *testing.T) {
		t.Parallel()
		_, err := codec.NewEncoder("base32")
		assert.ErrorIs(t, err, codec.ErrUnknownScheme)
	})
}

func TestEncoders(t *testing.T) {
	t.Parallel()

	input := []byte{0x00, 0xff, 0x10, '|', ':', 0x7f}

	t.Run("base64 is url safe and unpadded", func(t *testing.T) {
		t.Parallel()
		enc, err := codec.NewEncoder(codec.EncoderBase64)
		require.NoError(t, err)

		out := enc.Encode([]byte{0xfb, 0xff})
		assert.Equal(t, "-_8", out)
		assert.NotContains(t, enc.Encode(input), "|")

		back, err := enc.Decode(enc.Encode(input))
		require.NoError(t, err)
		assert.Equal(t, input, back)
	})

	t.Run("base16 round trips", func(t *testing.T) {
		t.Parallel()
		enc, err := codec.NewEncoder(codec.EncoderBase16)
		require.NoError(t, err)

		assert.Equal(t, "00ff107c3a7f", enc.Encode(input))
		back, err := enc.Decode("00ff107c3a7f")
		require.NoError(t, err)
		assert.Equal(t, input, back)
	})

	t.Run("malformed input", func(t *testing.T) {
		t.Parallel()
		b64, _ := codec.NewEncoder(codec.EncoderBase64)
		_, err := b64.Decode("a|b")
		assert.ErrorIs(t, err, codec.ErrDecode)

		hex, _ := codec.NewEncoder(codec.EncoderBase16)
		_, err = hex.Decode("zz")
		assert.ErrorIs(t, err, codec.ErrDecode)
	})
}

func TestSerializers(t *testing.T) {
	t.Parallel()

	type profile struct {
		User  string
		Roles []string
	}

	for _, name := range []string{codec.SerializerJSON, codec.SerializerGob} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ser, err := codec.NewSerializer(name)
			require.NoError(t, err)
			assert.Equal(t, name, ser.Name())

			in := profile{User: "alice", Roles: []string{"admin"}}
			data, err := ser.Marshal(in)
			require.NoError(t, err)

			var out profile
			require.NoError(t, ser.Unmarshal(data, &out))
			assert.Equal(t, in, out)
		})
	}

	t.Run("unknown serializer", func(t *testing.T) {
		t.Parallel()
		_, err := codec.NewSerializer("msgpack")
		assert.ErrorIs(t, err, codec.ErrUnknownScheme)
	})
}
