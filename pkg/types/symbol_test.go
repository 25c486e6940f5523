package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolID(t *testing.T) {
	tests := []struct {
		name     string
		filePath string
		parent   string
		symName  string
		want     string
	}{
		{
			name:     "top level symbol",
			filePath: "pkg/auth/service.py",
			symName:  "login",
			want:     "pkg/auth/service.py::login",
		},
		{
			name:     "method gets parent qualification",
			filePath: "pkg/auth/service.py",
			parent:   "AuthService",
			symName:  "login",
			want:     "pkg/auth/service.py::AuthService.login",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SymbolID(tt.filePath, tt.parent, tt.symName))
		})
	}
}

func TestDisambiguateID(t *testing.T) {
	id := SymbolID("util.js", "", "helper")
	assert.Equal(t, "util.js::helper#42", DisambiguateID(id, 42))
}

func TestSymbolValidate(t *testing.T) {
	tests := []struct {
		name    string
		symbol  Symbol
		wantErr bool
	}{
		{
			name: "valid function",
			symbol: Symbol{
				Name: "run", FilePath: "main.go", Kind: KindFunction,
				LineStart: 1, LineEnd: 10,
			},
		},
		{
			name: "start after end",
			symbol: Symbol{
				Name: "run", FilePath: "main.go", Kind: KindFunction,
				LineStart: 10, LineEnd: 1,
			},
			wantErr: true,
		},
		{
			name: "zero line numbers",
			symbol: Symbol{
				Name: "run", FilePath: "main.go", Kind: KindFunction,
			},
			wantErr: true,
		},
		{
			name: "missing name",
			symbol: Symbol{
				FilePath: "main.go", Kind: KindFunction, LineStart: 1, LineEnd: 1,
			},
			wantErr: true,
		},
		{
			name: "unknown kind",
			symbol: Symbol{
				Name: "run", FilePath: "main.go", Kind: "macro",
				LineStart: 1, LineEnd: 1,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.symbol.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidSymbol)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNewSymbolRejectsInvertedRange(t *testing.T) {
	_, err := NewSymbol("a.py", "f", KindFunction, LangPython, 20, 10)
	require.Error(t, err)
}

func TestQualifiedName(t *testing.T) {
	s := Symbol{Name: "save", ParentSymbol: "Repo"}
	assert.Equal(t, "Repo.save", s.QualifiedName())

	s.ParentSymbol = ""
	assert.Equal(t, "save", s.QualifiedName())
}

func TestHasPrefix(t *testing.T) {
	s := Symbol{Name: "HandleRequest"}
	assert.True(t, s.HasPrefix("handle"))
	assert.False(t, s.HasPrefix("process"))
}
