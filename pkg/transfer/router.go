package transfer

// Router dispatches to the git agent for git URLs and to the HTTP agent
// for everything else.
type Router struct {
	HTTP Agent
	Git  Agent
}

// Create implements Agent.
func (r *Router) Create(codeName, remoteURL, destDir, channel string) (Session, error) {
	if IsGitURL(remoteURL) && r.Git != nil {
		return r.Git.Create(codeName, remoteURL, destDir, channel)
	}
	return r.HTTP.Create(codeName, remoteURL, destDir, channel)
}
