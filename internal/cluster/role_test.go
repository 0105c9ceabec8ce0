package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRoleTags = RoleTags{
	Server:  "k3s-server",
	Agent:   "k3s-agent",
	Storage: "k3s-storage",
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Role
		wantErr bool
	}{
		{name: "server upper", input: "SERVER", want: RoleServer},
		{name: "agent lower", input: "agent", want: RoleAgent},
		{name: "storage mixed case", input: "Storage", want: RoleStorage},
		{name: "surrounding whitespace", input: "  server ", want: RoleServer},
		{name: "unknown role", input: "master", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "single tag", input: "k3s-server", want: []string{"k3s-server"}},
		{name: "multiple tags", input: "k3s-server;prod;backup", want: []string{"k3s-server", "prod", "backup"}},
		{name: "whitespace trimmed", input: " k3s-agent ; prod ", want: []string{"k3s-agent", "prod"}},
		{name: "empty segments dropped", input: ";;k3s-storage;;", want: []string{"k3s-storage"}},
		{name: "empty string", input: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitTags(tt.input))
		})
	}
}

func TestClassifyTags(t *testing.T) {
	tests := []struct {
		name     string
		tags     []string
		wantRole Role
		wantOK   bool
	}{
		{name: "server tag", tags: []string{"k3s-server"}, wantRole: RoleServer, wantOK: true},
		{name: "agent with unrelated tags", tags: []string{"prod", "k3s-agent", "backup"}, wantRole: RoleAgent, wantOK: true},
		{name: "storage tag", tags: []string{"k3s-storage"}, wantRole: RoleStorage, wantOK: true},
		{name: "no role tags", tags: []string{"prod", "backup"}, wantOK: false},
		{name: "no tags at all", tags: nil, wantOK: false},
		// A VM tagged with two roles is ambiguous and excluded entirely,
		// never assigned by first-match precedence.
		{name: "two role tags excluded", tags: []string{"k3s-server", "k3s-agent"}, wantOK: false},
		{name: "all three role tags excluded", tags: []string{"k3s-server", "k3s-agent", "k3s-storage"}, wantOK: false},
		// Matching is set-based: the same role tag repeated is one match,
		// not an ambiguity.
		{name: "duplicated role tag counts once", tags: []string{"k3s-server", "k3s-server"}, wantRole: RoleServer, wantOK: true},
		{name: "duplicated tag plus second role excluded", tags: []string{"k3s-server", "k3s-server", "k3s-agent"}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, ok := ClassifyTags(tt.tags, testRoleTags)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantRole, role)
			}
		})
	}
}

func TestClassifyTagsFromRawTagString(t *testing.T) {
	// Proxmox can report the same tag twice in the raw string; the VM is
	// still a plain server node.
	role, ok := ClassifyTags(SplitTags("k3s-server;k3s-server"), testRoleTags)
	assert.True(t, ok)
	assert.Equal(t, RoleServer, role)
}
