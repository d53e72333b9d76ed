package athlete

// Merge combines a later, partial source into an earlier record. Earlier
// fields win: a non-empty field is never replaced, only empty fields are
// filled. The operation is idempotent; merging the same source twice is a
// no-op the second time.
func Merge(base, incoming PlayerRecord) PlayerRecord {
	out := base

	out.ID = firstNonEmpty(base.ID, incoming.ID)
	if !base.League.Known() {
		out.League = incoming.League
	}
	out.Name = firstNonEmpty(base.Name, incoming.Name)
	out.HeadshotURL = firstNonEmpty(base.HeadshotURL, incoming.HeadshotURL)
	out.Position = firstNonEmpty(base.Position, incoming.Position)
	out.Height = firstNonEmpty(base.Height, incoming.Height)
	out.Weight = firstNonEmpty(base.Weight, incoming.Weight)

	if out.Team == nil && incoming.Team != nil {
		teamCopy := *incoming.Team
		out.Team = &teamCopy
	}

	out.Seasons = MergeSeasons(base.Seasons, incoming.Seasons)

	if len(base.CurrentSeasonStats) == 0 && len(incoming.CurrentSeasonStats) > 0 {
		out.CurrentSeasonStats = incoming.CurrentSeasonStats
	}

	// Raw is a debugging passthrough of the most recent source, not merged.
	if incoming.Raw != nil {
		out.Raw = incoming.Raw
	}

	Finalize(&out)
	return out
}

// MergeSeasons combines two season lists by label. Matching labels collapse
// into one season whose stats map keeps the earlier source's value on key
// collision (invariant: one SeasonRecord per label, first-source-wins).
func MergeSeasons(base, incoming []Season) []Season {
	if len(incoming) == 0 {
		return base
	}

	out := make([]Season, 0, len(base)+len(incoming))
	index := make(map[string]int, len(base))
	for _, s := range base {
		index[s.Label] = len(out)
		out = append(out, s)
	}

	for _, s := range incoming {
		at, ok := index[s.Label]
		if !ok {
			index[s.Label] = len(out)
			out = append(out, s)
			continue
		}

		existing := out[at]
		if len(s.Stats) > 0 {
			combined := make(map[string]any, len(existing.Stats)+len(s.Stats))
			for k, v := range existing.Stats {
				combined[k] = v
			}
			for k, v := range s.Stats {
				if _, seen := combined[k]; !seen {
					combined[k] = v
				}
			}
			existing.Stats = combined
		}
		// An explicit flag from either source beats no flag; the earlier
		// source's explicit flag is authoritative on conflict.
		if existing.Current == nil {
			existing.Current = s.Current
		}
		out[at] = existing
	}

	return out
}

// Finalize re-establishes the current-season invariant after construction or
// merge:
//
//  1. a season explicitly flagged current always backs CurrentSeasonStats;
//  2. otherwise directly-sourced current stats are kept as-is;
//  3. otherwise an explicit not-current flag anywhere suppresses guessing;
//  4. otherwise the first season in source order is used by convention.
func Finalize(p *PlayerRecord) {
	if p == nil {
		return
	}

	explicitFalse := false
	for i := range p.Seasons {
		flag := p.Seasons[i].Current
		if flag == nil {
			continue
		}
		if *flag {
			p.CurrentSeasonStats = p.Seasons[i].Stats
			return
		}
		explicitFalse = true
	}

	if len(p.CurrentSeasonStats) > 0 {
		return
	}
	if explicitFalse {
		p.CurrentSeasonStats = nil
		return
	}
	for i := range p.Seasons {
		if len(p.Seasons[i].Stats) > 0 {
			p.CurrentSeasonStats = p.Seasons[i].Stats
			return
		}
	}
	p.CurrentSeasonStats = nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
