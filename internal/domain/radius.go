package domain

const (
	// KmPerNauticalMile converts wind radii to kilometers.
	KmPerNauticalMile = 1.852

	// MinReportedRadiusNM is the smallest maximum radius treated as reported.
	// Sentinels (-999) and zeros fall below it.
	MinReportedRadiusNM = 10.0

	// FallbackRadiusNM substitutes for an unreported extent. 260 nm is a
	// representative climatological size of the 34 kt wind field.
	FallbackRadiusNM = 260.0
)

// InfluenceRadiusKm returns the footprint radius of an observation in km:
// the largest of the twelve wind radii, or FallbackRadiusNM when none reaches
// MinReportedRadiusNM.
func InfluenceRadiusKm(radii WindRadii) float64 {
	nm := radii.Max()
	if nm < MinReportedRadiusNM {
		nm = FallbackRadiusNM
	}
	return nm * KmPerNauticalMile
}

// AttachRadii sets InfluenceRadiusKm on every observation in place.
func AttachRadii(tracks []Track) {
	for i := range tracks {
		obs := tracks[i].Observations
		for j := range obs {
			obs[j].InfluenceRadiusKm = InfluenceRadiusKm(obs[j].WindRadii)
		}
	}
}
