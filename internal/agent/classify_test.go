package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/latticelabs/lattice/pkg/domain"
)

func TestParseClassification(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want domain.Action
	}{
		{
			name: "plain yaml",
			raw:  "next_action: modify_scene\nreason: |\n  layout change\n",
			want: domain.ActionModifyScene,
		},
		{
			name: "fenced yaml",
			raw:  "```yaml\nnext_action: generate_node\nreason: |\n  new node\n```",
			want: domain.ActionGenerateNode,
		},
		{
			name: "yml fence",
			raw:  "```yml\nnext_action: chat\nreason: greeting\n```",
			want: domain.ActionChat,
		},
		{
			name: "escaped newlines",
			raw:  `next_action: modify_node\nreason: params`,
			want: domain.ActionModifyNode,
		},
		{
			name: "malformed yaml routes to chat",
			raw:  "next_action: [unterminated",
			want: domain.ActionChat,
		},
		{
			name: "unknown action routes to chat",
			raw:  "next_action: delete_everything\nreason: nope",
			want: domain.ActionChat,
		},
		{
			name: "missing field routes to chat",
			raw:  "reason: no action given",
			want: domain.ActionChat,
		},
		{
			name: "empty output routes to chat",
			raw:  "",
			want: domain.ActionChat,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, parseClassification(tc.raw))
		})
	}
}
