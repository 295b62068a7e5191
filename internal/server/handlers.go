package server

import (
	"strconv"
	"strings"

	"github.com/Taichi-iskw/pod-digest/internal/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	maxEpisodeLimit     = 200
	defaultChannelLimit = 100
)

// flagsRequest is the body of POST /api/flags
type flagsRequest struct {
	VideoID  string `json:"videoId"`
	Watched  *bool  `json:"watched"`
	Favorite *bool  `json:"favorite"`
}

func (s *Server) listEpisodes(c *gin.Context) {
	limit := repository.DefaultEpisodeLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = min(n, maxEpisodeLimit)
	}

	episodes, err := s.deps.Episodes.List(c.Request.Context(), repository.EpisodeFilter{
		ChannelID: strings.TrimSpace(c.Query("channel_id")),
		Limit:     limit,
	})
	if err != nil {
		s.logger.Error("failed to list episodes", zap.Error(err))
		fail(c, err)
		return
	}
	ok(c, gin.H{"episodes": episodes})
}

func (s *Server) getEpisode(c *gin.Context) {
	episode, err := s.deps.Episodes.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, episode)
}

func (s *Server) listChannels(c *gin.Context) {
	channels, err := s.deps.Channels.List(c.Request.Context(), defaultChannelLimit, 0)
	if err != nil {
		s.logger.Error("failed to list channels", zap.Error(err))
		fail(c, err)
		return
	}
	ok(c, gin.H{"channels": channels})
}

func (s *Server) getFlags(c *gin.Context) {
	videoID := strings.TrimSpace(c.Query("videoId"))
	if videoID == "" {
		badRequest(c, "videoId is required")
		return
	}

	flag, err := s.deps.Flags.Get(c.Request.Context(), videoID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, flag)
}

func (s *Server) updateFlags(c *gin.Context) {
	var req flagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	req.VideoID = strings.TrimSpace(req.VideoID)
	if req.VideoID == "" {
		badRequest(c, "videoId is required")
		return
	}
	update := repository.FlagUpdate{Watched: req.Watched, Favorite: req.Favorite}
	if update.Empty() {
		badRequest(c, "nothing to update")
		return
	}

	ctx := c.Request.Context()
	if err := s.deps.Flags.Upsert(ctx, req.VideoID, update); err != nil {
		s.logger.Error("failed to update flags", zap.String("video_id", req.VideoID), zap.Error(err))
		fail(c, err)
		return
	}

	flag, err := s.deps.Flags.Get(ctx, req.VideoID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, flag)
}
