// Package preprocess implements Mini-SIL, the text-level rewrite pass
// that expands fixed-size array declarations/parameters and unrolls
// `for v in range(lo, hi):` loops into straight-line scalar code
// before the source ever reaches the scanner. The back end has no
// aggregate types or bounded iteration, so this pass trades code size
// for keeping the generator simple.
//
// This stays a text-level transform rather than a structural pass over
// a first parse, a decision recorded in DESIGN.md: the grammar these
// rewrites operate on is regular enough that a structural pass would
// mostly duplicate the regexes below, and keeping the expansion in
// front of the scanner means a malformed expansion still gets ordinary
// LexError/ParseError diagnostics instead of a second error channel.
package preprocess

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	arrayDeclRe = regexp.MustCompile(`^var\s+(\w+)\s*:\s*(\w+)\s*=\s*array((?:\[\d+])+);?$`)
	kernelRe    = regexp.MustCompile(`kernel\s+(\w+)\s*\(([^)]*)\)\s*\{`)
	paramArrRe  = regexp.MustCompile(`^(\w+)\s*:\s*(\w+)\s*=\s*array((?:\[\d+])+)$`)
	dimsRe      = regexp.MustCompile(`\[(\d+)]`)
	forRe       = regexp.MustCompile(`^(\s*)for\s+(\w+)\s+in\s+range\(\s*(\d+)\s*,\s*(\d+)\s*\)\s*:`)
	indexedRe   = regexp.MustCompile(`(\w+)((?:\[\d+])+)`)
	cpuSplitRe  = regexp.MustCompile(`(?m)^\s*@cpu\b`)
)

// arrayMapping records one flattened array element: its declared base
// name, its index tuple, and the flat scalar name it was rewritten to.
type arrayMapping struct {
	base    string
	indices []int
	flat    string
}

// Transform runs the full Mini-SIL pipeline: split off the @cpu tail,
// expand kernel-parameter and local array declarations into flat
// scalars, rewrite indexed uses (longest index tuple first, to avoid
// prefix collisions), unroll `for` loops, and reattach the @cpu tail
// verbatim.
func Transform(source string) string {
	sil, cpuTail := splitCpu(source)

	code, paramMappings := expandKernelParameters(sil)

	var lines []string
	var localMappings []arrayMapping
	for _, ln := range strings.Split(code, "\n") {
		repl, mapping, ok := expandArrayDeclaration(ln)
		if !ok {
			lines = append(lines, ln)
			continue
		}
		lines = append(lines, repl)
		localMappings = append(localMappings, mapping...)
	}
	code = strings.Join(lines, "\n")

	allMappings := append(append([]arrayMapping{}, paramMappings...), localMappings...)
	code = substituteArrayUses(code, allMappings)

	code = unrollForLoops(code)

	if cpuTail == "" {
		return code
	}
	return code + "\n" + cpuTail
}

// splitCpu detaches the tail starting at the first line beginning
// with `@cpu`, preserved verbatim.
func splitCpu(source string) (sil string, cpuTail string) {
	loc := cpuSplitRe.FindStringIndex(source)
	if loc == nil {
		return source, ""
	}
	return source[:loc[0]], source[loc[0]:]
}

func expandDimensions(spec string) []int {
	matches := dimsRe.FindAllStringSubmatch(spec, -1)
	sizes := make([]int, 0, len(matches))
	for _, m := range matches {
		n, _ := strconv.Atoi(m[1])
		sizes = append(sizes, n)
	}
	return sizes
}

// expandCombinations enumerates every index tuple in lexicographic
// order for the given per-dimension sizes.
func expandCombinations(sizes []int) [][]int {
	if len(sizes) == 0 {
		return nil
	}
	total := 1
	for _, s := range sizes {
		total *= s
	}
	combos := make([][]int, 0, total)
	idxs := make([]int, len(sizes))
	for {
		combos = append(combos, append([]int{}, idxs...))
		pos := len(sizes) - 1
		for pos >= 0 {
			idxs[pos]++
			if idxs[pos] < sizes[pos] {
				break
			}
			idxs[pos] = 0
			pos--
		}
		if pos < 0 {
			break
		}
	}
	return combos
}

func flatName(base string, idxs []int) string {
	parts := make([]string, len(idxs))
	for i, v := range idxs {
		parts[i] = strconv.Itoa(v)
	}
	return base + "_" + strings.Join(parts, "_")
}

// expandArrayDeclaration rewrites `var name: type = array[N1][N2]...;`
// into one `var name_i1_i2: type = 0;` per index tuple.
func expandArrayDeclaration(line string) (string, []arrayMapping, bool) {
	m := arrayDeclRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", nil, false
	}
	name, typ, dims := m[1], m[2], m[3]
	sizes := expandDimensions(dims)

	var decls []string
	var mapping []arrayMapping
	for _, idxs := range expandCombinations(sizes) {
		sc := flatName(name, idxs)
		decls = append(decls, fmt.Sprintf("var %s: %s = 0;", sc, typ))
		mapping = append(mapping, arrayMapping{base: name, indices: idxs, flat: sc})
	}
	return strings.Join(decls, "\n"), mapping, true
}

// expandKernelParameters rewrites each array-typed parameter of the
// first kernel header in code into a flat sequence of scalar
// parameters.
func expandKernelParameters(code string) (string, []arrayMapping) {
	loc := kernelRe.FindStringSubmatchIndex(code)
	if loc == nil {
		return code, nil
	}
	full := code[loc[0]:loc[1]]
	kname := code[loc[2]:loc[3]]
	paramBlock := code[loc[4]:loc[5]]

	var newParams []string
	var mapping []arrayMapping
	for _, raw := range strings.Split(paramBlock, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		mm := paramArrRe.FindStringSubmatch(raw)
		if mm == nil {
			newParams = append(newParams, raw)
			continue
		}
		bname, typ, dims := mm[1], mm[2], mm[3]
		sizes := expandDimensions(dims)
		for _, idxs := range expandCombinations(sizes) {
			sc := flatName(bname, idxs)
			newParams = append(newParams, fmt.Sprintf("%s: %s", sc, typ))
			mapping = append(mapping, arrayMapping{base: bname, indices: idxs, flat: sc})
		}
	}

	newHeader := fmt.Sprintf("kernel %s(%s){", kname, strings.Join(newParams, ", "))
	return strings.Replace(code, full, newHeader, 1), mapping
}

// substituteArrayUses replaces every `name[i1][i2]...` occurrence with
// its flat scalar name. Mappings are applied longest-index-tuple
// first so that e.g. `a[0][1]` (2 indices) is substituted before any
// single-index mapping on `a` could shadow it.
func substituteArrayUses(code string, mappings []arrayMapping) string {
	sorted := append([]arrayMapping{}, mappings...)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if len(sorted[j].indices) > len(sorted[i].indices) {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	for _, m := range sorted {
		var idxPat strings.Builder
		for _, idx := range m.indices {
			fmt.Fprintf(&idxPat, `\[\s*%d\s*]`, idx)
		}
		pat := regexp.MustCompile(`\b` + regexp.QuoteMeta(m.base) + idxPat.String())
		code = pat.ReplaceAllString(code, m.flat)
	}
	return code
}

// replaceIndexedVars converts any remaining `a[0][1]` forms (ones not
// covered by a declared mapping, e.g. loop-unrolled uses of an index
// variable already substituted to a literal) into `a_0_1`.
func replaceIndexedVars(line string) string {
	return indexedRe.ReplaceAllStringFunc(line, func(s string) string {
		m := indexedRe.FindStringSubmatch(s)
		name := m[1]
		indices := dimsRe.FindAllStringSubmatch(m[2], -1)
		parts := make([]string, len(indices))
		for i, idx := range indices {
			parts[i] = idx[1]
		}
		return name + "_" + strings.Join(parts, "_")
	})
}

// unrollForLoops expands each `for v in range(lo, hi):` block into
// hi-lo copies of its body with v textually substituted, recursing
// into nested for loops found within an unrolled body. Lines are
// matched on their own, without tracking enclosing braces, so a `for`
// inside a `loop { ... }` body is unrolled like any other; nothing
// here rejects that form.
func unrollForLoops(code string) string {
	lines := strings.Split(code, "\n")
	var result []string
	i := 0
	for i < len(lines) {
		line := lines[i]
		m := forRe.FindStringSubmatch(line)
		if m == nil {
			result = append(result, line)
			i++
			continue
		}
		indent := len(m[1])
		varName := m[2]
		lo, _ := strconv.Atoi(m[3])
		hi, _ := strconv.Atoi(m[4])

		body, nextI := collectBlock(lines, i+1, indent)

		for val := lo; val < hi; val++ {
			unrolledBody := unrollForLoops(dedent(strings.Join(body, "\n")))
			for _, bl := range strings.Split(unrolledBody, "\n") {
				bl = substituteWord(bl, varName, strconv.Itoa(val))
				result = append(result, replaceIndexedVars(bl))
			}
		}
		i = nextI
	}
	return strings.Join(result, "\n")
}

// collectBlock gathers every line more indented than baseIndent
// starting at startIdx, treating blank lines as part of the block.
func collectBlock(lines []string, startIdx, baseIndent int) (block []string, nextIdx int) {
	i := startIdx
	for i < len(lines) {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			block = append(block, line)
			i++
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent <= baseIndent {
			break
		}
		block = append(block, line)
		i++
	}
	return block, i
}

func substituteWord(line, word, value string) string {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
	return re.ReplaceAllString(line, value)
}

// dedent strips the common leading whitespace of every non-blank
// line, mirroring Python's textwrap.dedent so a recursively unrolled
// nested-for body lines up its own indentation from column zero.
func dedent(block string) string {
	lines := strings.Split(block, "\n")
	minIndent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		indent := len(l) - len(strings.TrimLeft(l, " \t"))
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}
	if minIndent <= 0 {
		return block
	}
	for i, l := range lines {
		if len(l) >= minIndent {
			lines[i] = l[minIndent:]
		} else {
			lines[i] = strings.TrimLeft(l, " \t")
		}
	}
	return strings.Join(lines, "\n")
}
