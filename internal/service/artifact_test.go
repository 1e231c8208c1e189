package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"

	"gaia/internal/alert"
	"gaia/internal/model"
	"gaia/internal/quality"
	repoMocks "gaia/internal/repository/mocks"
	"gaia/internal/storage"
	storeMocks "gaia/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type captureNotifier struct {
	sent []alert.Notification
	err  error
}

func (c *captureNotifier) Notify(_ context.Context, n alert.Notification) error {
	c.sent = append(c.sent, n)
	return c.err
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		SceneID:  "scene-1",
		JobID:    "job-1",
		Kind:     model.ArtifactAnalysis,
		Filename: "20240101_ndvi_analysis.tif",
		Size:     11,
		Stats:    model.IndexStats{Min: -0.1, Mean: 0.55, Max: 0.9},
	}
}

func registeredScene() *model.Scene {
	return &model.Scene{
		ID:           "scene-1",
		Filename:     "20240101_S2A_T33UVP.tif",
		AcquiredDate: "20240101",
		TileID:       "T33UVP",
		CloudCover:   5.0,
	}
}

func TestArtifactService_Register(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		mutate        func(in *RegisterInput)
		setupMocks    func(mStore *storeMocks.MockStorage, mArts *repoMocks.MockArtifactRepository, mScenes *repoMocks.MockSceneRepository) io.Reader
		wantErr       error
		wantErrMsg    string
		wantAlerts    int
		checkArtifact func(t *testing.T, a *model.Artifact)
	}{
		{
			name: "happy path - analysis raster",
			setupMocks: func(mStore *storeMocks.MockStorage, mArts *repoMocks.MockArtifactRepository, mScenes *repoMocks.MockSceneRepository) io.Reader {
				mScenes.On("FindByID", ctx, "scene-1").Return(registeredScene(), nil)
				mStore.On("Put", ctx, "processed/20240101_ndvi_analysis.tif", mock.Anything, mock.Anything).
					Run(drainReader).
					Return(storage.ObjectInfo{Key: "processed/20240101_ndvi_analysis.tif"}, nil)
				mArts.On("Create", ctx, mock.MatchedBy(func(a *model.Artifact) bool {
					return a.IndexName == "ndvi" &&
						a.Kind == model.ArtifactAnalysis &&
						a.AlertLevel == model.AlertLow &&
						len(a.SHA256) == 64
				})).Return(&model.Artifact{ID: "gen-id", AlertLevel: model.AlertLow}, nil)
				return strings.NewReader("raster data")
			},
			checkArtifact: func(t *testing.T, a *model.Artifact) {
				assert.Equal(t, "gen-id", a.ID)
			},
		},
		{
			name: "happy path - zonal table",
			mutate: func(in *RegisterInput) {
				in.Kind = model.ArtifactZonal
				in.Filename = "20240101_ndvi_zonal.csv"
				in.Size = 64
			},
			setupMocks: func(mStore *storeMocks.MockStorage, mArts *repoMocks.MockArtifactRepository, mScenes *repoMocks.MockSceneRepository) io.Reader {
				mScenes.On("FindByID", ctx, "scene-1").Return(registeredScene(), nil)
				mStore.On("Put", ctx, "stats/20240101_ndvi_zonal.csv", mock.Anything, mock.Anything).
					Run(drainReader).
					Return(storage.ObjectInfo{Key: "stats/20240101_ndvi_zonal.csv"}, nil)
				mArts.On("Create", ctx, mock.MatchedBy(func(a *model.Artifact) bool {
					return a.Kind == model.ArtifactZonal && a.IndexName == "ndvi"
				})).Return(&model.Artifact{ID: "gen-id"}, nil)
				return strings.NewReader("zone,index,min,mean,max,count\nA,ndvi,0.1,0.5,0.9,100\n")
			},
		},
		{
			name: "zonal table with wrong header",
			mutate: func(in *RegisterInput) {
				in.Kind = model.ArtifactZonal
				in.Filename = "20240101_ndvi_zonal.csv"
			},
			setupMocks: func(mStore *storeMocks.MockStorage, mArts *repoMocks.MockArtifactRepository, mScenes *repoMocks.MockSceneRepository) io.Reader {
				mScenes.On("FindByID", ctx, "scene-1").Return(registeredScene(), nil)
				return strings.NewReader("region,value\nA,0.5\n")
			},
			wantErr: ErrBadZonalHeader,
		},
		{
			name: "stats outside index bounds",
			mutate: func(in *RegisterInput) {
				in.Stats = model.IndexStats{Min: -0.1, Mean: 0.5, Max: 1.2}
			},
			setupMocks: func(mStore *storeMocks.MockStorage, mArts *repoMocks.MockArtifactRepository, mScenes *repoMocks.MockSceneRepository) io.Reader {
				mScenes.On("FindByID", ctx, "scene-1").Return(registeredScene(), nil)
				return strings.NewReader("raster data")
			},
			wantErr: quality.ErrIndexOutOfRange,
		},
		{
			name: "unknown scene",
			setupMocks: func(mStore *storeMocks.MockStorage, mArts *repoMocks.MockArtifactRepository, mScenes *repoMocks.MockSceneRepository) io.Reader {
				mScenes.On("FindByID", ctx, "scene-1").Return(nil, sql.ErrNoRows)
				return strings.NewReader("raster data")
			},
			wantErr: ErrNotFound,
		},
		{
			name: "bad analysis filename",
			mutate: func(in *RegisterInput) {
				in.Filename = "ndvi.tif"
			},
			setupMocks: func(mStore *storeMocks.MockStorage, mArts *repoMocks.MockArtifactRepository, mScenes *repoMocks.MockSceneRepository) io.Reader {
				mScenes.On("FindByID", ctx, "scene-1").Return(registeredScene(), nil)
				return strings.NewReader("raster data")
			},
			wantErrMsg: "does not match",
		},
		{
			name: "unknown kind",
			mutate: func(in *RegisterInput) {
				in.Kind = "thumbnail"
			},
			setupMocks: func(mStore *storeMocks.MockStorage, mArts *repoMocks.MockArtifactRepository, mScenes *repoMocks.MockSceneRepository) io.Reader {
				mScenes.On("FindByID", ctx, "scene-1").Return(registeredScene(), nil)
				return strings.NewReader("raster data")
			},
			wantErr: ErrUnknownArtifactKind,
		},
		{
			name: "low mean on clear scene dispatches alert",
			mutate: func(in *RegisterInput) {
				in.Stats = model.IndexStats{Min: -0.2, Mean: 0.1, Max: 0.4}
			},
			setupMocks: func(mStore *storeMocks.MockStorage, mArts *repoMocks.MockArtifactRepository, mScenes *repoMocks.MockSceneRepository) io.Reader {
				mScenes.On("FindByID", ctx, "scene-1").Return(registeredScene(), nil)
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Run(drainReader).
					Return(storage.ObjectInfo{Key: "processed/20240101_ndvi_analysis.tif"}, nil)
				mArts.On("Create", ctx, mock.MatchedBy(func(a *model.Artifact) bool {
					return a.AlertLevel == model.AlertHigh
				})).Return(&model.Artifact{
					ID: "gen-id", JobID: "job-1", IndexName: "ndvi",
					Stats: model.IndexStats{Mean: 0.1}, AlertLevel: model.AlertHigh,
				}, nil)
				return strings.NewReader("raster data")
			},
			wantAlerts: 1,
		},
		{
			name: "same low mean on cloudy scene stays low",
			mutate: func(in *RegisterInput) {
				in.Stats = model.IndexStats{Min: -0.2, Mean: 0.1, Max: 0.4}
			},
			setupMocks: func(mStore *storeMocks.MockStorage, mArts *repoMocks.MockArtifactRepository, mScenes *repoMocks.MockSceneRepository) io.Reader {
				cloudy := registeredScene()
				cloudy.CloudCover = 80.0
				mScenes.On("FindByID", ctx, "scene-1").Return(cloudy, nil)
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Run(drainReader).
					Return(storage.ObjectInfo{Key: "processed/20240101_ndvi_analysis.tif"}, nil)
				mArts.On("Create", ctx, mock.MatchedBy(func(a *model.Artifact) bool {
					return a.AlertLevel == model.AlertLow
				})).Return(&model.Artifact{ID: "gen-id", AlertLevel: model.AlertLow}, nil)
				return strings.NewReader("raster data")
			},
			wantAlerts: 0,
		},
		{
			name: "db error rolls back storage",
			setupMocks: func(mStore *storeMocks.MockStorage, mArts *repoMocks.MockArtifactRepository, mScenes *repoMocks.MockSceneRepository) io.Reader {
				mScenes.On("FindByID", ctx, "scene-1").Return(registeredScene(), nil)
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Run(drainReader).
					Return(storage.ObjectInfo{Key: "processed/20240101_ndvi_analysis.tif"}, nil)
				mArts.On("Create", ctx, mock.Anything).Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, "processed/20240101_ndvi_analysis.tif").Return(nil)
				return strings.NewReader("raster data")
			},
			wantErrMsg: "db save failed: db fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mArts := new(repoMocks.MockArtifactRepository)
			mScenes := new(repoMocks.MockSceneRepository)
			notifier := &captureNotifier{}
			svc := NewArtifactService(mStore, mArts, mScenes, notifier)

			in := validRegisterInput()
			if tt.mutate != nil {
				tt.mutate(&in)
			}
			r := tt.setupMocks(mStore, mArts, mScenes)

			a, err := svc.Register(ctx, r, in)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else if tt.wantErrMsg != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, a)
				if tt.checkArtifact != nil {
					tt.checkArtifact(t, a)
				}
			}
			assert.Len(t, notifier.sent, tt.wantAlerts)

			mStore.AssertExpectations(t)
			mArts.AssertExpectations(t)
			mScenes.AssertExpectations(t)
		})
	}
}

func TestArtifactService_Register_AlertFailureDoesNotFail(t *testing.T) {
	ctx := context.Background()

	mStore := new(storeMocks.MockStorage)
	mArts := new(repoMocks.MockArtifactRepository)
	mScenes := new(repoMocks.MockSceneRepository)
	notifier := &captureNotifier{err: errors.New("webhook down")}
	svc := NewArtifactService(mStore, mArts, mScenes, notifier)

	mScenes.On("FindByID", ctx, "scene-1").Return(registeredScene(), nil)
	mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
		Run(drainReader).
		Return(storage.ObjectInfo{Key: "processed/20240101_ndvi_analysis.tif"}, nil)
	mArts.On("Create", ctx, mock.Anything).
		Return(&model.Artifact{ID: "gen-id", AlertLevel: model.AlertHigh}, nil)

	in := validRegisterInput()
	in.Stats = model.IndexStats{Min: -0.2, Mean: 0.1, Max: 0.4}

	a, err := svc.Register(ctx, strings.NewReader("raster data"), in)
	assert.NoError(t, err)
	assert.NotNil(t, a)
	assert.Len(t, notifier.sent, 1)
}

func TestArtifactService_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		setupMocks func(mArts *repoMocks.MockArtifactRepository)
		wantErr    error
	}{
		{
			name: "happy path",
			id:   "art-1",
			setupMocks: func(mArts *repoMocks.MockArtifactRepository) {
				mArts.On("FindByID", ctx, "art-1").Return(&model.Artifact{ID: "art-1"}, nil)
			},
		},
		{
			name:       "validation - empty id",
			id:         "",
			setupMocks: func(mArts *repoMocks.MockArtifactRepository) {},
			wantErr:    ErrIDRequired,
		},
		{
			name: "not found",
			id:   "missing",
			setupMocks: func(mArts *repoMocks.MockArtifactRepository) {
				mArts.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mArts := new(repoMocks.MockArtifactRepository)
			svc := NewArtifactService(nil, mArts, nil, nil)

			tt.setupMocks(mArts)

			a, err := svc.Get(ctx, tt.id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, a)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, a)
			}
			mArts.AssertExpectations(t)
		})
	}
}

func TestCheckZonalHeader_ReplaysConsumedBytes(t *testing.T) {
	const csvBody = "zone,index,min,mean,max,count\nA,ndvi,0.1,0.5,0.9,100\n"

	r, err := checkZonalHeader(strings.NewReader(csvBody))
	assert.NoError(t, err)

	replayed, err := io.ReadAll(r)
	assert.NoError(t, err)
	assert.Equal(t, csvBody, string(replayed))
}
