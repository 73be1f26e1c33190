package node

import "strings"

// PathTree records which paths currently exist under a revision's tree; the
// ls subcommand replays each revision's adds and deletes into one to list
// the live paths and answer whether a given file exists at that revision.
// Neither the merge engine nor the transforms use it. Adapted from the teacher's directory-contents
// tree (gitp4transfer's Node/node.Node), generalized with case sensitivity
// dropped (SVN paths are always case-sensitive, unlike the git trees the
// teacher walked) since spec §3 has no case-folding concept.
type PathTree struct {
	Name     string
	Path     string
	IsFile   bool
	Children []*PathTree
}

// NewPathTree returns an empty root node named name (use "" for the tree root).
func NewPathTree(name string) *PathTree {
	return &PathTree{Name: name}
}

func (n *PathTree) addSubPath(fullPath, subPath string, isFile bool) {
	parts := strings.SplitN(subPath, "/", 2)
	head := parts[0]
	for _, c := range n.Children {
		if c.Name == head {
			if len(parts) == 1 {
				return // already registered
			}
			c.addSubPath(fullPath, parts[1], isFile)
			return
		}
	}
	if len(parts) == 1 {
		n.Children = append(n.Children, &PathTree{Name: head, IsFile: isFile, Path: fullPath})
		return
	}
	child := &PathTree{Name: head}
	n.Children = append(n.Children, child)
	child.addSubPath(fullPath, parts[1], isFile)
}

func (n *PathTree) deleteSubPath(subPath string) {
	parts := strings.SplitN(subPath, "/", 2)
	head := parts[0]
	for i, c := range n.Children {
		if c.Name != head {
			continue
		}
		if len(parts) == 1 {
			n.Children[i] = n.Children[len(n.Children)-1]
			n.Children = n.Children[:len(n.Children)-1]
			return
		}
		c.deleteSubPath(parts[1])
		return
	}
}

// AddFile registers path as a file leaf, creating intermediate directories
// as needed. A path already registered is a no-op.
func (n *PathTree) AddFile(path string) { n.addSubPath(path, path, true) }

// AddDir registers path as a directory, creating intermediate directories
// as needed.
func (n *PathTree) AddDir(path string) { n.addSubPath(path, path, false) }

// DeleteFile removes path, file or directory, and everything under it.
func (n *PathTree) DeleteFile(path string) { n.deleteSubPath(path) }

func (n *PathTree) childFiles() []string {
	var files []string
	for _, c := range n.Children {
		if c.IsFile {
			files = append(files, c.Path)
		} else {
			files = append(files, c.childFiles()...)
		}
	}
	return files
}

// GetFiles returns every file path under dirName ("" for the whole tree).
func (n *PathTree) GetFiles(dirName string) []string {
	if n.Name == "" && dirName == "" {
		return n.childFiles()
	}
	parts := strings.SplitN(dirName, "/", 2)
	for _, c := range n.Children {
		if c.Name != parts[0] {
			continue
		}
		if len(parts) == 1 {
			if c.IsFile {
				return []string{c.Path}
			}
			return c.childFiles()
		}
		return c.GetFiles(parts[1])
	}
	return nil
}

// FindFile reports whether fileName is registered as a single file leaf.
func (n *PathTree) FindFile(fileName string) bool {
	dir := ""
	if i := strings.LastIndex(fileName, "/"); i >= 0 {
		dir = fileName[:i]
	}
	for _, f := range n.GetFiles(dir) {
		if f == fileName {
			return true
		}
	}
	return false
}

// Exists reports whether path (file or directory) is registered anywhere
// in the tree.
func (n *PathTree) Exists(path string) bool {
	cur := n
	for _, part := range strings.Split(path, "/") {
		var next *PathTree
		for _, c := range cur.Children {
			if c.Name == part {
				next = c
				break
			}
		}
		if next == nil {
			return false
		}
		cur = next
	}
	return true
}
