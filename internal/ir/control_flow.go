package ir

import "kanso/internal/ast"

// linkBlocks records a CFG edge from -> to.
func (b *Builder) linkBlocks(from, to *BasicBlock) {
	from.Successors = append(from.Successors, to)
	to.Predecessors = append(to.Predecessors, from)
}

// snapshotVariables captures the current stack depth of every live variable,
// so a branch's writes can be popped off again once the branch is done.
func (b *Builder) snapshotVariables() map[string]int {
	depths := make(map[string]int, len(b.variableStack))
	for name, stack := range b.variableStack {
		depths[name] = len(stack)
	}
	return depths
}

// branchResult captures the value each live variable holds at the end of a
// branch, then rewinds the variable stack back to the pre-branch snapshot so
// a sibling branch starts from the same state.
func (b *Builder) branchResult(preBranch map[string]int) map[string]*Value {
	result := make(map[string]*Value)
	for name, stack := range b.variableStack {
		if len(stack) > 0 {
			result[name] = stack[len(stack)-1]
		}
		if depth, ok := preBranch[name]; ok {
			if len(stack) > depth {
				b.variableStack[name] = stack[:depth]
			}
		} else {
			b.variableStack[name] = nil
		}
	}
	return result
}

// sealMerge inserts phi nodes in mergeBlock for every variable whose value
// differs across the given predecessor results, and writes the merged value
// back into the variable stack so code after the merge reads through it.
func (b *Builder) sealMerge(mergeBlock *BasicBlock, branches ...map[string]*Value) {
	names := make(map[string]bool)
	for _, branch := range branches {
		for name := range branch {
			names[name] = true
		}
	}

	for name := range names {
		inputs := make(map[*BasicBlock]*Value)
		var distinct *Value
		varies := false
		for i, pred := range mergeBlock.Predecessors {
			val := branches[i][name]
			if val == nil {
				val = b.readVariable(name)
			}
			inputs[pred] = val
			if distinct == nil {
				distinct = val
			} else if distinct != val {
				varies = true
			}
		}

		if !varies && distinct != nil {
			b.writeVariable(name, distinct)
			continue
		}

		phi := &PhiInstruction{
			ID:     b.nextInstID(),
			Block:  mergeBlock,
			Inputs: inputs,
		}
		phi.Result = b.createValue(name, phiType(inputs))
		mergeBlock.Instructions = append(mergeBlock.Instructions, phi)
		b.writeVariable(name, phi.Result)
	}
}

// phiType picks a representative type for a phi's result from its inputs;
// branches of structured control flow never disagree on a variable's type.
func phiType(inputs map[*BasicBlock]*Value) Type {
	for _, v := range inputs {
		if v != nil {
			return v.Type
		}
	}
	return &IntType{Bits: 256}
}

// buildNestedBlock lowers a nested block (if/while/for body) without forcing
// an implicit terminator the way buildBlock does for function bodies — the
// caller wires the fallthrough edge to whatever follows the construct.
func (b *Builder) buildNestedBlock(block *ast.FunctionBlock) {
	for _, item := range block.Items {
		if b.currentBlock.Terminator != nil {
			break // a return/break/continue already closed this block
		}
		b.buildBlockItem(item)
	}
	if block.TailExpr != nil && b.currentBlock.Terminator == nil {
		b.buildExpression(block.TailExpr.Expr)
	}
}

func (b *Builder) buildIfStatement(ifStmt *ast.IfStmt) {
	condValue := b.buildExpression(ifStmt.Condition)

	thenBlock := b.createBlock("if_then")
	mergeBlock := b.createBlock("if_merge")

	falseTarget := mergeBlock
	var elseBlock *BasicBlock
	if ifStmt.ElseBlock != nil {
		elseBlock = b.createBlock("if_else")
		falseTarget = elseBlock
	}

	entryBlock := b.currentBlock
	entryBlock.Terminator = &BranchTerminator{
		ID:         b.nextInstID(),
		Block:      entryBlock,
		Condition:  condValue,
		TrueBlock:  thenBlock,
		FalseBlock: falseTarget,
	}
	b.linkBlocks(entryBlock, thenBlock)
	b.linkBlocks(entryBlock, falseTarget)

	preBranch := b.snapshotVariables()

	b.currentBlock = thenBlock
	b.buildNestedBlock(&ifStmt.ThenBlock)
	thenEnd := b.currentBlock
	thenTerminated := thenEnd.Terminator != nil
	thenResult := b.branchResult(preBranch)

	var elseResult map[string]*Value
	var elseEnd *BasicBlock
	elseTerminated := false
	if elseBlock != nil {
		b.currentBlock = elseBlock
		b.buildNestedBlock(ifStmt.ElseBlock)
		elseEnd = b.currentBlock
		elseTerminated = elseEnd.Terminator != nil
		elseResult = b.branchResult(preBranch)
	} else {
		elseResult = make(map[string]*Value)
	}

	if !thenTerminated {
		thenEnd.Terminator = &JumpTerminator{ID: b.nextInstID(), Block: thenEnd, Target: mergeBlock}
		b.linkBlocks(thenEnd, mergeBlock)
	}
	if elseBlock != nil {
		if !elseTerminated {
			elseEnd.Terminator = &JumpTerminator{ID: b.nextInstID(), Block: elseEnd, Target: mergeBlock}
			b.linkBlocks(elseEnd, mergeBlock)
		}
	} else {
		b.linkBlocks(entryBlock, mergeBlock)
	}

	b.currentBlock = mergeBlock
	if len(mergeBlock.Predecessors) == 0 {
		// Both branches returned/broke/continued — merge block is unreachable,
		// but still current so any trailing statements attach somewhere.
		return
	}
	// One result per predecessor of mergeBlock, in the order the edges were linked.
	var results []map[string]*Value
	if !thenTerminated {
		results = append(results, thenResult)
	}
	if elseBlock != nil {
		if !elseTerminated {
			results = append(results, elseResult)
		}
	} else {
		// entryBlock's fallthrough contributes the pre-branch values.
		results = append(results, b.branchResult(preBranch))
	}
	b.sealMerge(mergeBlock, results...)
}

func (b *Builder) buildWhileStatement(whileStmt *ast.WhileStmt) {
	headerBlock := b.createBlock("while_header")
	bodyBlock := b.createBlock("while_body")
	exitBlock := b.createBlock("while_exit")

	entryBlock := b.currentBlock
	entryBlock.Terminator = &JumpTerminator{ID: b.nextInstID(), Block: entryBlock, Target: headerBlock}
	b.linkBlocks(entryBlock, headerBlock)

	preLoop := b.snapshotVariables()
	preLoopValues := b.branchResult(preLoop)
	for name, val := range preLoopValues {
		b.writeVariable(name, val)
	}

	// Header phis are incomplete until the latch's values are known; record
	// them so the back-edge can patch in the missing input once the body is built.
	pending := make(map[string]*PhiInstruction)
	for name, val := range preLoopValues {
		phi := &PhiInstruction{
			ID:     b.nextInstID(),
			Block:  headerBlock,
			Inputs: map[*BasicBlock]*Value{entryBlock: val},
		}
		phi.Result = b.createValue(name, val.Type)
		headerBlock.Instructions = append(headerBlock.Instructions, phi)
		pending[name] = phi
		b.writeVariable(name, phi.Result)
	}
	b.incompletePhis[headerBlock] = append(b.incompletePhis[headerBlock], valuesOf(pending)...)

	b.currentBlock = headerBlock
	condValue := b.buildExpression(whileStmt.Condition)
	headerBlock.Terminator = &BranchTerminator{
		ID:         b.nextInstID(),
		Block:      headerBlock,
		Condition:  condValue,
		TrueBlock:  bodyBlock,
		FalseBlock: exitBlock,
	}
	b.linkBlocks(headerBlock, bodyBlock)
	b.linkBlocks(headerBlock, exitBlock)

	b.breakTargets = append(b.breakTargets, exitBlock)
	b.continueTargets = append(b.continueTargets, headerBlock)

	preBody := b.snapshotVariables()
	b.currentBlock = bodyBlock
	b.buildNestedBlock(&whileStmt.Body)
	latchBlock := b.currentBlock
	bodyTerminated := latchBlock.Terminator != nil
	bodyResult := b.branchResult(preBody)

	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]
	b.continueTargets = b.continueTargets[:len(b.continueTargets)-1]

	if !bodyTerminated {
		latchBlock.Terminator = &JumpTerminator{ID: b.nextInstID(), Block: latchBlock, Target: headerBlock}
		b.linkBlocks(latchBlock, headerBlock)
		for name, phi := range pending {
			val := bodyResult[name]
			if val == nil {
				val = phi.Result
			}
			phi.Inputs[latchBlock] = val
		}
	}

	b.currentBlock = exitBlock
	for name, phi := range pending {
		b.writeVariable(name, phi.Result)
	}
}

func (b *Builder) buildForStatement(forStmt *ast.ForStmt) {
	if forStmt.Init != nil {
		b.buildBlockItem(forStmt.Init)
	}

	// Desugar for(init; cond; post) into a while loop whose body runs post at
	// the end, so the latch/phi machinery above is reused unchanged.
	headerBlock := b.createBlock("for_header")
	bodyBlock := b.createBlock("for_body")
	exitBlock := b.createBlock("for_exit")

	entryBlock := b.currentBlock
	entryBlock.Terminator = &JumpTerminator{ID: b.nextInstID(), Block: entryBlock, Target: headerBlock}
	b.linkBlocks(entryBlock, headerBlock)

	preLoop := b.snapshotVariables()
	preLoopValues := b.branchResult(preLoop)
	for name, val := range preLoopValues {
		b.writeVariable(name, val)
	}

	pending := make(map[string]*PhiInstruction)
	for name, val := range preLoopValues {
		phi := &PhiInstruction{
			ID:     b.nextInstID(),
			Block:  headerBlock,
			Inputs: map[*BasicBlock]*Value{entryBlock: val},
		}
		phi.Result = b.createValue(name, val.Type)
		headerBlock.Instructions = append(headerBlock.Instructions, phi)
		pending[name] = phi
		b.writeVariable(name, phi.Result)
	}
	b.incompletePhis[headerBlock] = append(b.incompletePhis[headerBlock], valuesOf(pending)...)

	b.currentBlock = headerBlock
	var condValue *Value
	if forStmt.Condition != nil {
		condValue = b.buildExpression(forStmt.Condition)
	} else {
		condValue = b.getOrCreateGlobalConstant(true, &BoolType{}, "true")
	}
	headerBlock.Terminator = &BranchTerminator{
		ID:         b.nextInstID(),
		Block:      headerBlock,
		Condition:  condValue,
		TrueBlock:  bodyBlock,
		FalseBlock: exitBlock,
	}
	b.linkBlocks(headerBlock, bodyBlock)
	b.linkBlocks(headerBlock, exitBlock)

	b.breakTargets = append(b.breakTargets, exitBlock)
	b.continueTargets = append(b.continueTargets, headerBlock)

	preBody := b.snapshotVariables()
	b.currentBlock = bodyBlock
	b.buildNestedBlock(&forStmt.Body)
	if forStmt.Post != nil && b.currentBlock.Terminator == nil {
		b.buildBlockItem(forStmt.Post)
	}
	latchBlock := b.currentBlock
	bodyTerminated := latchBlock.Terminator != nil
	bodyResult := b.branchResult(preBody)

	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]
	b.continueTargets = b.continueTargets[:len(b.continueTargets)-1]

	if !bodyTerminated {
		latchBlock.Terminator = &JumpTerminator{ID: b.nextInstID(), Block: latchBlock, Target: headerBlock}
		b.linkBlocks(latchBlock, headerBlock)
		for name, phi := range pending {
			val := bodyResult[name]
			if val == nil {
				val = phi.Result
			}
			phi.Inputs[latchBlock] = val
		}
	}

	b.currentBlock = exitBlock
	for name, phi := range pending {
		b.writeVariable(name, phi.Result)
	}
}

func (b *Builder) buildBreakStatement(*ast.BreakStmt) {
	if len(b.breakTargets) == 0 {
		return // unreachable: the semantic analyzer rejects break outside a loop
	}
	target := b.breakTargets[len(b.breakTargets)-1]
	b.currentBlock.Terminator = &JumpTerminator{ID: b.nextInstID(), Block: b.currentBlock, Target: target}
	b.linkBlocks(b.currentBlock, target)
}

func (b *Builder) buildContinueStatement(*ast.ContinueStmt) {
	if len(b.continueTargets) == 0 {
		return
	}
	target := b.continueTargets[len(b.continueTargets)-1]
	b.currentBlock.Terminator = &JumpTerminator{ID: b.nextInstID(), Block: b.currentBlock, Target: target}
	b.linkBlocks(b.currentBlock, target)
}

func valuesOf(phis map[string]*PhiInstruction) []*PhiInstruction {
	result := make([]*PhiInstruction, 0, len(phis))
	for _, p := range phis {
		result = append(result, p)
	}
	return result
}
