// Package gitpath contains consts and methods to work with path inside
// the .git directory
package gitpath

import "os"

// .git/ Files and directories
const (
	DotGitPath      = ".git"
	ConfigPath      = "config"
	DescriptionPath = "description"
	PackedRefsPath  = "packed-refs"
	HEADPath        = "HEAD"
	ObjectsPath     = "objects"
	ObjectsInfoPath = ObjectsPath + string(os.PathSeparator) + "info"
	ObjectsPackPath = ObjectsPath + string(os.PathSeparator) + "pack"
	RefsPath        = "refs"
	RefsTagsPath    = RefsPath + "/tags"
	RefsHeadsPath   = RefsPath + "/heads"
	RefsRemotesPath = RefsPath + "/remotes"
)

// Ref returns the full ref-style path for an arbitrary short name, ex.
// "heads/master" becomes "refs/heads/master"
func Ref(name string) string {
	return RefsPath + "/" + name
}

// LocalBranch returns the full ref path of a local branch, ex. "master"
// becomes "refs/heads/master"
func LocalBranch(name string) string {
	return RefsHeadsPath + "/" + name
}

// LocalTag returns the full ref path of a local tag, ex. "v1" becomes
// "refs/tags/v1"
func LocalTag(name string) string {
	return RefsTagsPath + "/" + name
}
