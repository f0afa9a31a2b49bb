package renderer

import (
	"fmt"
	"strings"

	"OceanFFT/internal/logger"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
)

// Texture units the ocean shader samples from.
const (
	DisplacementUnit = 0
	NormalUnit       = 1
	JacobianUnit     = 2
)

// Program is a linked GL shader program with a uniform location cache.
type Program struct {
	ID       uint32
	Uniforms *UniformCache
}

// NewProgram compiles and links a vertex/fragment pair. Sources must be NUL
// terminated.
func NewProgram(vertexSource, fragmentSource string) (*Program, error) {
	vs, err := CompileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return nil, err
	}
	fs, err := CompileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return nil, err
	}
	id, err := LinkProgram(vs, fs)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Shader program linked", zap.Uint32("program", id))
	return &Program{ID: id, Uniforms: NewUniformCache(id)}, nil
}

// NewOceanProgram builds the program that draws the displaced grid.
func NewOceanProgram() (*Program, error) {
	return NewProgram(oceanVertexShaderSource, oceanFragmentShaderSource)
}

func (p *Program) Use() {
	gl.UseProgram(p.ID)
}

func (p *Program) Delete() {
	gl.DeleteProgram(p.ID)
	p.Uniforms.Clear()
}

// CompileShader compiles one stage and returns the info log on failure.
func CompileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	cSources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, cSources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)

		logger.Log.Error("Failed to compile", zap.String("stage", stageName(shaderType)), zap.String("log", log))
		return 0, fmt.Errorf("renderer: compile %s shader: %s", stageName(shaderType), strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

// LinkProgram links two compiled stages and deletes them.
func LinkProgram(vertexShader, fragmentShader uint32) (uint32, error) {
	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	gl.DetachShader(program, vertexShader)
	gl.DeleteShader(vertexShader)
	gl.DetachShader(program, fragmentShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		logger.Log.Error("Failed to link program", zap.String("log", log))
		return 0, fmt.Errorf("renderer: link program: %s", strings.TrimRight(log, "\x00"))
	}
	return program, nil
}

func stageName(shaderType uint32) string {
	switch shaderType {
	case gl.VERTEX_SHADER:
		return "vertex"
	case gl.FRAGMENT_SHADER:
		return "fragment"
	default:
		return fmt.Sprintf("0x%x", shaderType)
	}
}

var oceanVertexShaderSource = `#version 410 core

layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec2 inTexCoord;

uniform mat4 viewProjection;
uniform float tiling;        // grid extent / patch size
uniform float heightScale;
uniform sampler2D displacementMap;
uniform sampler2D normalMap;
uniform sampler2D jacobianMap;

out vec3 fragPos;
out vec3 fragNormal;
out float fragJacobian;

void main() {
    vec2 uv = inTexCoord * tiling;
    vec3 d = texture(displacementMap, uv).xyz;
    vec3 pos = inPosition + vec3(d.x, d.y * heightScale, d.z);

    fragPos = pos;
    fragNormal = texture(normalMap, uv).xyz;
    fragJacobian = texture(jacobianMap, uv).r;
    gl_Position = viewProjection * vec4(pos, 1.0);
}
` + "\x00"

var oceanFragmentShaderSource = `#version 410 core

in vec3 fragPos;
in vec3 fragNormal;
in float fragJacobian;

uniform vec3 viewPos;
uniform vec3 sunDirection;
uniform vec3 waterColor;
uniform vec3 skyColor;
uniform float foamThreshold;

out vec4 fragColor;

void main() {
    vec3 n = normalize(fragNormal);
    vec3 l = normalize(-sunDirection);
    vec3 v = normalize(viewPos - fragPos);
    vec3 h = normalize(l + v);

    float diffuse = max(dot(n, l), 0.0);
    float specular = pow(max(dot(n, h), 0.0), 256.0);
    float fresnel = 0.02 + 0.98 * pow(1.0 - max(dot(n, v), 0.0), 5.0);
    float foam = clamp((foamThreshold - fragJacobian) / foamThreshold, 0.0, 1.0);

    vec3 color = mix(waterColor * (0.3 + 0.7 * diffuse), skyColor, fresnel) + vec3(specular);
    fragColor = vec4(mix(color, vec3(0.95), foam), 1.0);
}
` + "\x00"
