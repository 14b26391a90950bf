package httpclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerbString(t *testing.T) {
	cases := []struct {
		verb Verb
		want string
	}{
		{VerbGet, "GET"},
		{VerbHead, "HEAD"},
		{VerbPost, "POST"},
		{VerbPut, "PUT"},
		{VerbPatch, "PATCH"},
		{VerbDelete, "DELETE"},
		{VerbConnect, "CONNECT"},
		{VerbOptions, "OPTIONS"},
		{Verb(99), "GET"},
		{Verb(-1), "GET"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.verb.String())
	}
}
