// Package engine opens a window and draws the ocean frames produced by the
// simulation behaviours.
package engine

import (
	"errors"
	"fmt"
	"runtime"

	"OceanFFT/internal/behaviour"
	"OceanFFT/internal/logger"
	"OceanFFT/internal/mesh"
	"OceanFFT/internal/ocean"
	"OceanFFT/internal/renderer"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// FrameSource hands the viewer the most recent ocean frame.
type FrameSource interface {
	Latest() *ocean.Frame
}

// Viewer runs the window loop. Behaviours are updated every frame and the
// fixed update runs every FixedEvery frames.
type Viewer struct {
	Width  int32
	Height int32
	Title  string

	Behaviours *behaviour.Manager
	Frames     FrameSource

	GridDim     int
	GridSpacing float32
	FixedEvery  int

	HeightScale   float32
	FoamThreshold float32
	WaterColor    mgl32.Vec3
	SkyColor      mgl32.Vec3
	SunDirection  mgl32.Vec3

	EnableCameraInput bool
	Camera            *renderer.Camera

	window    *glfw.Window
	program   *renderer.Program
	textures  *renderer.OceanTextures
	grid      *mesh.Grid
	gridBuf   *renderer.GridBuffer
	lastFrame uint64
	uploaded  bool
	frameID   int
}

// NewViewer returns a viewer with defaults suited to a 1 km patch.
func NewViewer(frames FrameSource) *Viewer {
	return &Viewer{
		Width:             1280,
		Height:            720,
		Title:             "OceanFFT",
		Behaviours:        behaviour.NewManager(),
		Frames:            frames,
		GridDim:           512,
		GridSpacing:       4,
		FixedEvery:        2,
		HeightScale:       1,
		FoamThreshold:     0.4,
		WaterColor:        mgl32.Vec3{0.02, 0.12, 0.2},
		SkyColor:          mgl32.Vec3{0.55, 0.7, 0.85},
		SunDirection:      mgl32.Vec3{-0.3, -1, -0.5},
		EnableCameraInput: true,
	}
}

// Run opens the window and blocks until it is closed. It must be called from
// the main goroutine.
func (v *Viewer) Run() error {
	if v.Frames == nil {
		return errors.New("engine: viewer has no frame source")
	}
	grid, err := mesh.NewGrid(v.GridDim, v.GridSpacing)
	if err != nil {
		return err
	}
	v.grid = grid

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("engine: init glfw: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 32)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	v.window, err = glfw.CreateWindow(int(v.Width), int(v.Height), v.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("engine: create window: %w", err)
	}
	v.window.MakeContextCurrent()
	glfw.SwapInterval(1)
	setDarkTitleBar(v.window)

	if err := gl.Init(); err != nil {
		return fmt.Errorf("engine: init OpenGL: %w", err)
	}
	logger.Log.Info("OpenGL initialized", zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))))

	if err := v.initGPU(); err != nil {
		return err
	}
	defer v.cleanup()

	v.Camera = renderer.NewCamera(v.Width, v.Height)
	v.window.SetCursorPosCallback(v.mouseCallback)
	v.window.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		v.Camera.ProcessMouseScroll(float32(yoff))
	})
	v.window.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		if w > 0 && h > 0 {
			gl.Viewport(0, 0, int32(w), int32(h))
			v.Camera.SetAspectRatio(float32(w) / float32(h))
		}
	})
	v.window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})

	v.loop()
	return nil
}

func (v *Viewer) initGPU() error {
	program, err := renderer.NewOceanProgram()
	if err != nil {
		return err
	}
	v.program = program
	v.textures = renderer.NewOceanTextures()
	v.gridBuf = renderer.NewGridBuffer(v.grid)

	gl.Enable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.ClearColor(v.SkyColor[0], v.SkyColor[1], v.SkyColor[2], 1)
	return nil
}

func (v *Viewer) loop() {
	lastTime := glfw.GetTime()
	for !v.window.ShouldClose() {
		now := glfw.GetTime()
		dt := now - lastTime
		lastTime = now

		if v.EnableCameraInput {
			v.Camera.ProcessKeyboard(v.window, float32(dt))
		}

		if fixedDue(v.frameID, v.FixedEvery) {
			v.Behaviours.UpdateAllFixed()
		}
		v.Behaviours.UpdateAll()

		v.draw()

		v.window.SwapBuffers()
		v.frameID++
		glfw.PollEvents()
	}
}

func (v *Viewer) draw() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	frame := v.Frames.Latest()
	if frame == nil {
		return
	}
	if !v.uploaded || frame.Index != v.lastFrame {
		if err := v.textures.Upload(frame); err != nil {
			logger.Log.Error("Frame upload failed", zap.Uint64("frame", frame.Index), zap.Error(err))
			return
		}
		v.lastFrame = frame.Index
		v.uploaded = true
	}

	v.program.Use()
	u := v.program.Uniforms
	u.SetMat4("viewProjection", v.Camera.GetViewProjection())
	u.SetVec3("viewPos", v.Camera.Position)
	u.SetFloat("tiling", Tiling(v.grid.Extent(), frame.PatchSize))
	u.SetFloat("heightScale", v.HeightScale)
	u.SetFloat("foamThreshold", v.FoamThreshold)
	u.SetVec3("waterColor", v.WaterColor)
	u.SetVec3("skyColor", v.SkyColor)
	u.SetVec3("sunDirection", v.SunDirection)
	u.SetInt("displacementMap", renderer.DisplacementUnit)
	u.SetInt("normalMap", renderer.NormalUnit)
	u.SetInt("jacobianMap", renderer.JacobianUnit)

	v.textures.Bind()
	v.gridBuf.Draw()
}

func (v *Viewer) cleanup() {
	if v.gridBuf != nil {
		v.gridBuf.Delete()
	}
	if v.textures != nil {
		stats := v.textures.GetStats()
		logger.Log.Info("Viewer closed",
			zap.Int("frames", v.frameID),
			zap.Int("texture_allocations", stats.Allocations),
			zap.Int("texture_updates", stats.Updates))
		v.textures.Delete()
	}
	if v.program != nil {
		v.program.Delete()
	}
}

// Mouse look while the right button is held.
func (v *Viewer) mouseCallback(w *glfw.Window, xpos, ypos float64) {
	if v.EnableCameraInput && w.GetAttrib(glfw.Focused) == glfw.True && w.GetMouseButton(glfw.MouseButtonRight) == glfw.Press {
		v.Camera.ProcessMousePosition(float32(xpos), float32(ypos))
	} else {
		v.Camera.ResetMouse()
	}
}

// Tiling is how many patch repeats span a grid of the given extent.
func Tiling(extent float32, patchSize float64) float32 {
	if patchSize <= 0 {
		return 1
	}
	return extent / float32(patchSize)
}

func fixedDue(frame, every int) bool {
	if every <= 1 {
		return true
	}
	return frame%every == 0
}
