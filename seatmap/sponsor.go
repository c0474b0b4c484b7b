package seatmap

// Sponsor placement zones for arena overlays. The renderer resolves these
// keys against whatever creative the room's sponsor configured.
const (
	PlacementStageBackground  = "arena.stage.background"
	PlacementStageFloorLogo   = "arena.stage.floor.logo"
	PlacementScoreboardTop    = "arena.scoreboard.top"
	PlacementScoreboardSide   = "arena.scoreboard.side"
	PlacementSeatBackrestVIP  = "arena.seat.vip.backrest"
	PlacementLightingBanner   = "arena.lighting.banner"
	PlacementJumbotronOverlay = "arena.jumbotron.overlay"
	PlacementCrowdLower       = "arena.crowd.lower.overlay"
	PlacementCrowdUpper       = "arena.crowd.upper.overlay"
)
