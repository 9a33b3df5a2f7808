package semantic

import (
	"fmt"
	"kanso/internal/ast"
)

// Linearize computes a deterministic base-to-derived resolution order for a
// contract's inheritance list, the same shape as Python's C3 MRO: each base
// contributes its own linearization (already most-base-first), concatenated
// left to right, duplicates collapsed to their rightmost (most-derived-among-
// bases) occurrence. registry supplies the ast.Contract for each base name;
// a name with no entry is reported rather than silently skipped, mirroring
// how ContextRegistry reports an unresolved use import instead of ignoring it.
func Linearize(contract *ast.Contract, registry map[string]*ast.Contract) ([]*ast.Contract, error) {
	seen := make(map[string]bool)
	var order []*ast.Contract

	var visit func(c *ast.Contract, trail []string) error
	visit = func(c *ast.Contract, trail []string) error {
		for _, base := range c.Bases {
			name := basePathName(base)
			for _, t := range trail {
				if t == name {
					return fmt.Errorf("circular inheritance: %s", appendCycle(trail, name))
				}
			}
			baseContract, ok := registry[name]
			if !ok {
				return fmt.Errorf("contract %q inherits from unknown base %q", c.Name.Value, name)
			}
			if err := visit(baseContract, append(trail, name)); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(contract, []string{contract.Name.Value}); err != nil {
		return nil, err
	}

	// A second pass builds the flattened order: visit bases depth-first,
	// append each base exactly once at its last (most-derived) appearance.
	var flatten func(c *ast.Contract) []*ast.Contract
	flatten = func(c *ast.Contract) []*ast.Contract {
		var result []*ast.Contract
		for _, base := range c.Bases {
			name := basePathName(base)
			baseContract := registry[name]
			result = append(result, flatten(baseContract)...)
			result = append(result, baseContract)
		}
		return result
	}
	for _, c := range flatten(contract) {
		name := c.Name.Value
		if seen[name] {
			continue
		}
		seen[name] = true
		order = append(order, c)
	}
	return order, nil
}

func basePathName(path *ast.CalleePath) string {
	if len(path.Parts) == 0 {
		return ""
	}
	return path.Parts[len(path.Parts)-1].Value
}

func appendCycle(trail []string, closing string) string {
	s := ""
	for _, t := range trail {
		s += t + " -> "
	}
	return s + closing
}

// RegisterBaseContract makes a parsed base contract available for Bases
// resolution. The caller (driver/CLI) is responsible for parsing every
// source file in the compilation unit and registering it before Analyze
// runs on the most-derived contract.
func (a *Analyzer) RegisterBaseContract(contract *ast.Contract) {
	if a.baseContracts == nil {
		a.baseContracts = make(map[string]*ast.Contract)
	}
	a.baseContracts[contract.Name.Value] = contract
}

// resolveInheritedItems linearizes contract.Bases and returns the
// base-to-derived-ordered contract items that should be merged ahead of the
// contract's own items, so later passes naturally let a derived redeclaration
// (same name, later in iteration order) shadow its base.
func (a *Analyzer) resolveInheritedItems(contract *ast.Contract) []ast.ContractItem {
	if len(contract.Bases) == 0 {
		return nil
	}

	registry := a.baseContracts
	if registry == nil {
		registry = map[string]*ast.Contract{}
	}
	bases, err := Linearize(contract, registry)
	if err != nil {
		a.addError(err.Error(), contract.Name.NodePos())
		return nil
	}

	var items []ast.ContractItem
	for _, base := range bases {
		items = append(items, base.Items...)
	}
	return items
}
