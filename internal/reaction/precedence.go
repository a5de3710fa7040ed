package reaction

// Resolve marks every reaction that shares a pillar with a strictly
// higher-ranked reaction as suppressed. Equal ranks leave each other alone.
// Suppression depends only on the unordered set of conflicting pairs, so the
// outcome is the same for any input order; SuppressedBy holds indexes into rs
// and is therefore only meaningful for the order rs is in.
func Resolve(rs []Reaction) {
	for i := range rs {
		rs[i].Suppressed = false
		rs[i].SuppressedBy = nil
	}
	for i := range rs {
		for j := i + 1; j < len(rs); j++ {
			if !rs[i].SharesParticipant(rs[j]) {
				continue
			}
			ri, rj := rs[i].Rank(), rs[j].Rank()
			switch {
			case ri.Outranks(rj):
				suppress(&rs[j], i)
			case rj.Outranks(ri):
				suppress(&rs[i], j)
			}
		}
	}
}

func suppress(r *Reaction, by int) {
	r.Suppressed = true
	r.SuppressedBy = append(r.SuppressedBy, by)
}
