package cloudinary

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestPublicID(t *testing.T) {
	require.Equal(t, "final-thesis-v2-abc.pdf", publicID("Final Thesis (v2).PDF", "abc"))
	require.Equal(t, "proposal-abc.docx", publicID("../../???.docx", "abc"))
	require.Equal(t, "notes-abc", publicID("notes", "abc"))
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{CloudName: "demo"}, zerolog.Nop())
	require.Error(t, err)

	store, err := New(Config{CloudName: "demo", APIKey: "key", APISecret: "secret"}, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, defaultFolder, store.folder)
}
