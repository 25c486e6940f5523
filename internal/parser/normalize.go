package parser

import (
	"sort"

	"github.com/dhollis/codeatlas-mcp/pkg/types"
)

// Normalize converts raw parser output into canonical symbols with
// generated IDs. The base ID is "file::name" with the parent name folded in
// for nested definitions; IDs that still collide after parent qualification
// get the start line suffixed, which keeps them stable across re-parses.
// Raw symbols that fail validation (zero or inverted spans from badly
// mangled source) are dropped rather than failing the file.
func Normalize(filePath string, lang types.Language, serviceName string, raws []types.RawSymbol) []*types.Symbol {
	symbols := make([]*types.Symbol, 0, len(raws))
	for _, raw := range raws {
		sym := &types.Symbol{
			ID:           types.SymbolID(filePath, raw.Parent, raw.Name),
			FilePath:     filePath,
			Name:         raw.Name,
			Kind:         raw.Kind,
			Language:     lang,
			ServiceName:  serviceName,
			LineStart:    raw.LineStart,
			LineEnd:      raw.LineEnd,
			Signature:    raw.Signature,
			Docstring:    raw.Docstring,
			IsExported:   raw.Exported,
			ParentSymbol: raw.Parent,
		}
		if err := sym.Validate(); err != nil {
			continue
		}
		symbols = append(symbols, sym)
	}

	disambiguate(symbols)
	return symbols
}

// disambiguate suffixes colliding IDs with their start line. Dead-code
// exclusion and chunk back-linking both key off ID uniqueness.
func disambiguate(symbols []*types.Symbol) {
	byID := make(map[string][]*types.Symbol)
	for _, sym := range symbols {
		byID[sym.ID] = append(byID[sym.ID], sym)
	}
	for _, group := range byID {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].LineStart < group[j].LineStart })
		for _, sym := range group[1:] {
			sym.ID = types.DisambiguateID(sym.ID, sym.LineStart)
		}
	}
}
