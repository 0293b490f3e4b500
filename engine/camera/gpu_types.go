package camera

import (
	"github.com/Carmen-Shannon/oxy-shadow/common"
	"github.com/Carmen-Shannon/oxy-shadow/engine/renderer"
)

// ViewProjectionLayout is the layout of the camera's view-projection uniform (a single mat4x4f).
var ViewProjectionLayout = renderer.NewUniformLayout("viewProjection",
	renderer.UniformField{Name: "viewProjection", Size: common.Mat4Size},
)
