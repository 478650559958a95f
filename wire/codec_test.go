package wire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeProducesSingleTrailingNewline(t *testing.T) {
	var codec JSONLCodec
	encoded, err := codec.Encode(sampleHello())
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(encoded, "\n"))
	require.Equal(t, 1, strings.Count(encoded, "\n"))
}

func TestDecodeToleratesSurroundingWhitespace(t *testing.T) {
	var codec JSONLCodec
	encoded, err := codec.Encode(sampleHello())
	require.NoError(t, err)
	env, err := codec.Decode("   " + encoded + "  ")
	require.NoError(t, err)
	require.Equal(t, KindHello, env.Kind)
}

func TestDecodeEmptyLineErrors(t *testing.T) {
	var codec JSONLCodec
	_, err := codec.Decode("   ")
	require.Error(t, err)
}

func TestDecodeStreamMultipleLines(t *testing.T) {
	var codec JSONLCodec
	envs := []Envelope{sampleHello(), NewFatal(FatalEnvelope{Error: "boom"})}
	var buf strings.Builder
	for _, e := range envs {
		line, err := codec.Encode(e)
		require.NoError(t, err)
		buf.WriteString(line)
	}

	var got []Envelope
	err := codec.DecodeStream(strings.NewReader(buf.String()), func(e Envelope) error {
		got = append(got, e)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, KindHello, got[0].Kind)
	require.Equal(t, KindFatal, got[1].Kind)
}

func TestDecodeStreamSkipsBlankLines(t *testing.T) {
	var codec JSONLCodec
	line, err := codec.Encode(sampleHello())
	require.NoError(t, err)
	input := "\n\n" + line + "\n   \n" + line
	var count int
	err = codec.DecodeStream(strings.NewReader(input), func(e Envelope) error {
		count++
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, count)
}
