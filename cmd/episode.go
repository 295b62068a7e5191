package cmd

import (
	"github.com/Taichi-iskw/pod-digest/cmd/episode"
)

func init() {
	rootCmd.AddCommand(episode.NewEpisodeCommand(nil, episode.NewRepositoryFactory(loadConfig)))
}
