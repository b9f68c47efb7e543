package target

// Kind distinguishes the two classes of deployment target.
type Kind string

const (
	// KindPlatform is a known application install (Claude Desktop, VS Code...).
	KindPlatform Kind = "platform"

	// KindProject is an ad-hoc per-project config directory.
	KindProject Kind = "project"
)

// Target is one deployment destination backed by a single config file.
type Target struct {
	// Key uniquely identifies the target: the platform identifier for
	// platform targets, the absolute project path for project targets.
	Key string

	// Kind is platform or project.
	Kind Kind

	// ConfigPath is the target's config file location.
	ConfigPath string

	// Description is shown in listings.
	Description string

	// Available reports whether the config location resolves on this
	// machine. Recomputed on every catalog refresh; an unavailable target
	// stays in the catalog so deployment history remains inspectable.
	Available bool
}
