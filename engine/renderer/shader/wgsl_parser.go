package shader

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
)

// wgslVertexFormatMap maps WGSL type names to their corresponding vertex format and byte size
var wgslVertexFormatMap = map[string]vertexFormatInfo{
	"f32":       {renderer.VertexFormatFloat32, 4},
	"vec2f":     {renderer.VertexFormatFloat32x2, 8},
	"vec2<f32>": {renderer.VertexFormatFloat32x2, 8},
	"vec3f":     {renderer.VertexFormatFloat32x3, 12},
	"vec3<f32>": {renderer.VertexFormatFloat32x3, 12},
	"vec4f":     {renderer.VertexFormatFloat32x4, 16},
	"vec4<f32>": {renderer.VertexFormatFloat32x4, 16},
	"i32":       {renderer.VertexFormatSint32, 4},
	"vec2i":     {renderer.VertexFormatSint32x2, 8},
	"vec2<i32>": {renderer.VertexFormatSint32x2, 8},
	"vec3i":     {renderer.VertexFormatSint32x3, 12},
	"vec3<i32>": {renderer.VertexFormatSint32x3, 12},
	"vec4i":     {renderer.VertexFormatSint32x4, 16},
	"vec4<i32>": {renderer.VertexFormatSint32x4, 16},
	"u32":       {renderer.VertexFormatUint32, 4},
	"vec2u":     {renderer.VertexFormatUint32x2, 8},
	"vec2<u32>": {renderer.VertexFormatUint32x2, 8},
	"vec3u":     {renderer.VertexFormatUint32x3, 12},
	"vec3<u32>": {renderer.VertexFormatUint32x3, 12},
	"vec4u":     {renderer.VertexFormatUint32x4, 16},
	"vec4<u32>": {renderer.VertexFormatUint32x4, 16},
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a struct field line: optional attributes, name, colon, type.
	// The type capture (.+) is greedy to handle parameterized types like array<T, N>.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(0) @binding(0) var<uniform> camera: CameraUniform;
	// or handle types: @group(2) @binding(0) var diffuseTexture: texture_2d<f32>;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseVertexLayouts extracts vertex buffer layouts from WGSL source code.
// It finds all structs that are pure vertex inputs (have @location attributes but no @builtin fields)
// and converts each into one VertexBufferLayout. The slice index is the vertex buffer slot, assigned in
// struct declaration order. Structs containing unrecognized WGSL types are skipped.
//
// Parameters:
//   - source: the raw WGSL source code string
//
// Returns:
//   - []renderer.VertexBufferLayout: vertex layouts indexed by slot
func parseVertexLayouts(source string) []renderer.VertexBufferLayout {
	var result []renderer.VertexBufferLayout
	cleaned := stripComments(source)
	structs := parseStructBlocks(cleaned)

	for _, ps := range structs {
		if !isVertexInputStruct(ps) {
			continue
		}
		layout, ok := buildVertexBufferLayout(ps)
		if !ok {
			continue
		}
		result = append(result, layout)
	}

	return result
}

// parseBindGroupLayouts extracts all @group(N) @binding(M) resource declarations from WGSL
// source and returns them as BindGroupLayout values grouped by group index.
// Each layout's entries are sorted by binding index. The provided visibility flag is
// applied to all entries, corresponding to the shader stage that declared them.
//
// Parameters:
//   - source: the raw WGSL source code string
//   - visibility: the shader stage visibility flag to set on each entry
//
// Returns:
//   - map[int]renderer.BindGroupLayout: layouts keyed by group index
//   - map[int]map[int]string: variable names keyed by group and binding index for resource tracking
//   - error: an error if a declaration uses a resource type that cannot be classified
func parseBindGroupLayouts(source string, visibility renderer.ShaderStage) (map[int]renderer.BindGroupLayout, map[int]map[int]string, error) {
	groups := make(map[int][]renderer.BindingLayoutEntry)
	varNames := make(map[int]map[int]string)
	cleaned := stripComments(source)

	// Struct sizes resolve MinBindingSize so bind groups can be checked against undersized buffers.
	structs := parseStructBlocks(cleaned)
	structSizes := computeStructSizes(structs)

	matches := bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1)
	for _, match := range matches {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		addressSpace := strings.TrimSpace(match[3])
		varName := strings.TrimSpace(match[4])
		typeName := strings.TrimSpace(match[5])

		entry := classifyResource(uint32(binding), visibility, addressSpace, typeName)
		if entry.Kind == renderer.BindingKindUndefined {
			return nil, nil, fmt.Errorf("@group(%d) @binding(%d) %s: unsupported resource type %q", group, binding, varName, typeName)
		}

		if entry.Kind.IsBuffer() {
			if layout, ok := resolveTypeLayout(typeName, structSizes); ok && layout.size > 0 {
				entry.MinBindingSize = layout.size
			}
		}

		groups[group] = append(groups[group], entry)

		if varNames[group] == nil {
			varNames[group] = make(map[int]string)
		}
		varNames[group][binding] = varName
	}

	result := make(map[int]renderer.BindGroupLayout, len(groups))
	for g, entries := range groups {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})
		for i := 1; i < len(entries); i++ {
			if entries[i].Binding == entries[i-1].Binding {
				return nil, nil, fmt.Errorf("@group(%d) @binding(%d) declared twice", g, entries[i].Binding)
			}
		}
		result[g] = renderer.BindGroupLayout{Entries: entries}
	}

	return result, varNames, nil
}

// parseEntryPoint extracts the entry point function name for the given shader type
// from WGSL source. Returns an empty string if no matching entry point annotation is found.
//
// Parameters:
//   - source: the raw WGSL source code string
//   - shaderType: the shader type to search for (ShaderTypeVertex or ShaderTypeFragment)
//
// Returns:
//   - string: the entry point function name, or empty string if not found
func parseEntryPoint(source string, shaderType ShaderType) string {
	cleaned := stripComments(source)

	var re *regexp.Regexp
	switch shaderType {
	case ShaderTypeVertex:
		re = vertexEntryRegex
	case ShaderTypeFragment:
		re = fragmentEntryRegex
	default:
		return ""
	}

	if match := re.FindStringSubmatch(cleaned); match != nil {
		return match[1]
	}
	return ""
}

// parseStructBlocks finds all struct { ... } blocks in the cleaned WGSL source
// and parses their fields including @location and @builtin attributes
//
// Parameters:
//   - source: WGSL source with comments already stripped
//
// Returns:
//   - []parsedStruct: all struct blocks found in the source
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))

	for _, match := range matches {
		name := match[1]
		body := match[2]

		fields := parseStructFields(body)
		structs = append(structs, parsedStruct{
			name:   name,
			fields: fields,
		})
	}

	return structs
}

// parseStructFields parses the body of a struct block into individual fields,
// extracting @location and @builtin attributes along with the field name and type
//
// Parameters:
//   - body: the content between { and } of a struct declaration
//
// Returns:
//   - []parsedField: all fields found in the struct body
func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var field parsedField

		// check for @builtin
		if builtinRegex.MatchString(line) {
			field.isBuiltin = true
		}

		// check for @location(N)
		if locMatch := locationRegex.FindStringSubmatch(line); locMatch != nil {
			loc, err := strconv.Atoi(locMatch[1])
			if err == nil {
				field.location = loc
			}
		} else {
			field.location = -1
		}

		// extract field name and type
		if fm := fieldRegex.FindStringSubmatch(line); fm != nil {
			field.name = fm[1]
			field.typeName = strings.TrimSpace(fm[2])
		} else {
			continue
		}

		fields = append(fields, field)
	}

	return fields
}
