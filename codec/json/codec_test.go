package json_test

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/teenjuna/capacitor/codec/json"
	"github.com/teenjuna/capacitor/internal/testing/require"
)

func TestCodec(t *testing.T) {
	type Item struct {
		ID string
		N1 int
		N2 float64
	}

	codec := json.New[Item]()

	var items []Item
	for i := range 1000 {
		items = append(items, Item{
			ID: strconv.Itoa(i),
			N1: rand.IntN(1000),
			N2: float64(rand.IntN(1000)) / 4,
		})
	}

	data, err := codec.Encode(slices.Values(items))
	require.Nil(t, err)
	require.Equal(t, strings.Count(string(data), "\n"), len(items))

	var decoded []Item
	err = codec.Decode(data, func(item Item) { decoded = append(decoded, item) })
	require.Nil(t, err)
	require.Equal(t, decoded, items)
}

func TestCodecEncodeReturnsOwnedBytes(t *testing.T) {
	codec := json.New[string]()

	first, err := codec.Encode(slices.Values([]string{"a"}))
	require.Nil(t, err)

	_, err = codec.Encode(slices.Values([]string{"b"}))
	require.Nil(t, err)

	require.Equal(t, string(first), "\"a\"\n")
}

func TestCodecDecodeError(t *testing.T) {
	codec := json.New[int]()
	err := codec.Decode([]byte("1\nnope\n"), func(int) {})
	require.NotNil(t, err)
}
