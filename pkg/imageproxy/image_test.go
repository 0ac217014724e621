package imageproxy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailsig/pkg/imageproxy"
)

func TestNeedsResolve(t *testing.T) {
	t.Parallel()

	const origin = "http://localhost:8080"
	tests := []struct {
		src  string
		want bool
	}{
		{"https://cdn.example.com/a.png", true},
		{"http://cdn.example.com/a.png", true},
		{"http://localhost:8080/static/a.png", false},
		{"/static/a.png", false},
		{"static/a.png", false},
		{"data:image/png;base64,AAAA", false},
		{"blob:http://localhost:8080/1234", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, imageproxy.NeedsResolve(tt.src, origin))
		})
	}

	assert.True(t, imageproxy.NeedsResolve("http://localhost:8080/a.png", ""))
}

func TestIsEmbedded(t *testing.T) {
	t.Parallel()
	assert.True(t, imageproxy.IsEmbedded("data:,x"))
	assert.True(t, imageproxy.IsEmbedded("blob:abc"))
	assert.False(t, imageproxy.IsEmbedded("https://x/data:"))
}

func TestImage_DataURI(t *testing.T) {
	t.Parallel()

	img := imageproxy.Image{ContentType: "image/jpeg", Data: []byte("hi")}
	assert.Equal(t, "data:image/jpeg;base64,aGk=", img.DataURI())
	assert.Equal(t, "data:image/png;base64,aGk=", imageproxy.Image{Data: []byte("hi")}.DataURI())
}

func TestParseDataURI(t *testing.T) {
	t.Parallel()

	t.Run("base64 round trip", func(t *testing.T) {
		t.Parallel()
		img, err := imageproxy.ParseDataURI("data:image/jpeg;base64,aGk=")
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", img.ContentType)
		assert.Equal(t, []byte("hi"), img.Data)
	})

	t.Run("percent encoded with parameters", func(t *testing.T) {
		t.Parallel()
		img, err := imageproxy.ParseDataURI("data:image/svg+xml;charset=utf-8,%3Csvg%3E")
		require.NoError(t, err)
		assert.Equal(t, "image/svg+xml", img.ContentType)
		assert.Equal(t, "<svg>", string(img.Data))
	})

	for _, bad := range []string{"https://x", "data:image/png;base64", "data:image/png;base64,!!!"} {
		t.Run(bad, func(t *testing.T) {
			t.Parallel()
			_, err := imageproxy.ParseDataURI(bad)
			assert.ErrorIs(t, err, imageproxy.ErrInvalidDataURI)
		})
	}
}

func TestMarshaler(t *testing.T) {
	t.Parallel()

	m := imageproxy.Marshaler{}
	in := imageproxy.Image{ContentType: "image/png", Data: []byte("a\nb")}
	data, err := m.Marshal(in)
	require.NoError(t, err)

	out, err := m.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = m.Unmarshal([]byte("no-separator"))
	assert.Error(t, err)
}
