package entities

// Project configuration keys
const (
	KeyProjectName        = "name"
	KeyProjectUUID        = "uuid"
	KeyAndroidPackageName = "modules.package_names.android"
)
