package kitsu

// Project is a Kitsu production.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Sequence groups shots inside a project.
type Sequence struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ProjectID string `json:"project_id"`
}

// Shot is a remote shot entity. Data and NbFrames are loosely typed on the
// server: values may be numbers, numeric strings, or null.
type Shot struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	NbFrames    any            `json:"nb_frames"`
	Data        map[string]any `json:"data"`
}

// Entity is the generic record returned for any entity id.
type Entity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// TaskType names a kind of task such as "From EVEREST".
type TaskType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TaskStatus names a task state such as "Done".
type TaskStatus struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

// Task links a task type to an entity.
type Task struct {
	ID         string `json:"id"`
	EntityID   string `json:"entity_id"`
	TaskTypeID string `json:"task_type_id"`
	ProjectID  string `json:"project_id"`
}

// Comment is a task comment that previews attach to.
type Comment struct {
	ID string `json:"id"`
}

// PreviewFile is an uploaded preview revision.
type PreviewFile struct {
	ID       string `json:"id"`
	Revision int    `json:"revision"`
}
