package naming

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseSceneName(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     SceneName
		wantErr  bool
	}{
		{
			name:     "standard tile",
			filename: "20231025_S2_T33UUE.tif",
			want:     SceneName{Date: "20231025", Sensor: "S2", TileID: "T33UUE"},
		},
		{
			name:     "tile id with underscores",
			filename: "20231025_S2_S2A_MSIL2A_20231025T100031.tif",
			want:     SceneName{Date: "20231025", Sensor: "S2", TileID: "S2A_MSIL2A_20231025T100031"},
		},
		{
			name:     "wrong extension",
			filename: "20231025_S2_T33UUE.tiff",
			wantErr:  true,
		},
		{
			name:     "missing tile",
			filename: "20231025_S2.tif",
			wantErr:  true,
		},
		{
			name:     "invalid date",
			filename: "20231340_S2_T33UUE.tif",
			wantErr:  true,
		},
		{
			name:     "empty",
			filename: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSceneName(tt.filename)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadSceneName)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildSceneName_RoundTrip(t *testing.T) {
	d := time.Date(2023, 10, 25, 14, 30, 0, 0, time.UTC)
	name := BuildSceneName(d, "S2", "T33UUE")
	assert.Equal(t, "20231025_S2_T33UUE.tif", name)

	parsed, err := ParseSceneName(name)
	assert.NoError(t, err)
	assert.Equal(t, "T33UUE", parsed.TileID)
}

func TestProvenanceName(t *testing.T) {
	assert.Equal(t, "20231025_S2_T33UUE_provenance.json", ProvenanceName("20231025_S2_T33UUE.tif"))
	assert.Equal(t, "raw/20231025_S2_T33UUE_provenance.json", ProvenancePath("20231025_S2_T33UUE.tif"))
}

func TestAnalysisName(t *testing.T) {
	assert.Equal(t, "20231025_NDVI_analysis.tif", AnalysisName("20231025", "NDVI"))

	date, index, err := ParseAnalysisName("20231025_NDVI_analysis.tif")
	assert.NoError(t, err)
	assert.Equal(t, "20231025", date)
	assert.Equal(t, "NDVI", index)

	_, _, err = ParseAnalysisName("20231025_NDVI.tif")
	assert.ErrorIs(t, err, ErrBadAnalysisName)

	_, _, err = ParseAnalysisName("notadate_NDVI_analysis.tif")
	assert.ErrorIs(t, err, ErrBadAnalysisName)
}

func TestZonalName(t *testing.T) {
	assert.Equal(t, "20231025_NDWI_zonal.csv", ZonalName("20231025", "NDWI"))

	date, index, err := ParseZonalName("20231025_NDWI_zonal.csv")
	assert.NoError(t, err)
	assert.Equal(t, "20231025", date)
	assert.Equal(t, "NDWI", index)

	_, _, err = ParseZonalName("20231025_zonal.csv")
	assert.ErrorIs(t, err, ErrBadZonalName)
}

func TestPackName(t *testing.T) {
	assert.Equal(t, "Evidence_Pack_abc123.txt", PackName("abc123", "txt"))
	assert.Equal(t, "reports/Evidence_Pack_abc123.txt", PackPath(PackName("abc123", "txt")))
}

func TestVaultPath(t *testing.T) {
	assert.Equal(t, "vault/20231025_S2_T33UUE.tif", VaultPath("raw/20231025_S2_T33UUE.tif"))
}
