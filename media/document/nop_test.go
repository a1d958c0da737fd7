package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataMode(t *testing.T) {
	tests := []struct {
		name     string
		mode     MetadataMode
		expected string
	}{
		{name: "metadata mode all", mode: MetadataModeAll, expected: "all"},
		{name: "metadata mode embed", mode: MetadataModeEmbed, expected: "embed"},
		{name: "metadata mode inference", mode: MetadataModeInference, expected: "inference"},
		{name: "metadata mode none", mode: MetadataModeNone, expected: "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.mode))
		})
	}
}

func TestNewNop(t *testing.T) {
	t.Run("returns singleton instance", func(t *testing.T) {
		nop1 := NewNop()
		nop2 := NewNop()

		require.NotNil(t, nop1)
		require.NotNil(t, nop2)
		assert.Same(t, nop1, nop2)
	})
}

func TestNop_InterfaceCompliance(t *testing.T) {
	nop := NewNop()
	t.Run("implements Formatter", func(t *testing.T) {
		var _ Formatter = nop
	})
}

func TestNop_Format(t *testing.T) {
	nop := NewNop()

	tests := []struct {
		name     string
		doc      *Document
		mode     MetadataMode
		expected string
	}{
		{
			name:     "simple document with mode all",
			doc:      &Document{ID: "doc1", Text: "hello world"},
			mode:     MetadataModeAll,
			expected: "hello world",
		},
		{
			name: "document with metadata ignored",
			doc: &Document{
				ID:   "doc5",
				Text: "main text",
				Metadata: map[string]any{
					"author": "test",
				},
			},
			mode:     MetadataModeAll,
			expected: "main text",
		},
		{
			name:     "empty text document",
			doc:      &Document{ID: "doc6", Text: ""},
			mode:     MetadataModeAll,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := nop.Format(tt.doc, tt.mode)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNop_ConcurrentAccess(t *testing.T) {
	const goroutines = 100
	done := make(chan *Nop, goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			done <- NewNop()
		}()
	}

	first := <-done
	for i := 1; i < goroutines; i++ {
		instance := <-done
		assert.Same(t, first, instance, "All instances should be the same")
	}
}
