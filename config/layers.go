package config

import "github.com/yohamta/donburi/ecs"

// Default is the ECS layer every simulation entity lives on.
var Default ecs.LayerID = ecs.LayerDefault
