package contracts

// Pipeline Stage 정의 (SSOT)
// 모든 로그, 메트릭 라벨에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   S0 → S1 → S2 → S3 → S4 → S5
//   Ingest  Benchmark  Scoring  Tagging  Snapshot  Trend

// Stage represents a pipeline stage
type Stage string

const (
	// StageIngest S0: 업로드 파일 파싱 및 정규화
	// 책임: 헤더 별칭 정리, 숫자 정리, 자산군 해석
	// 위치: internal/s0_ingest/
	StageIngest Stage = "S0_INGEST"

	// StageBenchmark S1: 자산군별 벤치마크 행 보장
	// 위치: internal/s1_benchmark/
	StageBenchmark Stage = "S1_BENCHMARK"

	// StageScoring S2: 통계 + Z-score 점수화
	// 책임: 피어 통계 (벤치마크 제외), 가중 Z-score, 0~100 점수
	// 위치: internal/s2_scoring/
	StageScoring Stage = "S2_SCORING"

	// StageTagging S3: 횡단면/시계열 태그
	// 위치: internal/s3_tagging/
	StageTagging Stage = "S3_TAGGING"

	// StageSnapshot S4: 월별 스냅샷 저장
	// 책임: 체크섬 중복 제거, active 스냅샷 관리
	// 위치: internal/snapshot/
	StageSnapshot Stage = "S4_SNAPSHOT"

	// StageTrend S5: 점수 추이 조회
	// 위치: internal/trend/
	StageTrend Stage = "S5_TREND"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "S0", "S1")
func (s Stage) ShortName() string {
	switch s {
	case StageIngest:
		return "S0"
	case StageBenchmark:
		return "S1"
	case StageScoring:
		return "S2"
	case StageTagging:
		return "S3"
	case StageSnapshot:
		return "S4"
	case StageTrend:
		return "S5"
	default:
		return "UNKNOWN"
	}
}

// Description returns Korean description of the stage
func (s Stage) Description() string {
	switch s {
	case StageIngest:
		return "파일 파싱/정규화"
	case StageBenchmark:
		return "벤치마크 행 보장"
	case StageScoring:
		return "피어 대비 점수화"
	case StageTagging:
		return "정성 태그 부여"
	case StageSnapshot:
		return "월별 스냅샷 저장"
	case StageTrend:
		return "점수 추이 분석"
	default:
		return "알 수 없음"
	}
}

// AllStages returns all pipeline stages in order
func AllStages() []Stage {
	return []Stage{
		StageIngest,
		StageBenchmark,
		StageScoring,
		StageTagging,
		StageSnapshot,
		StageTrend,
	}
}

// IsValidStage checks if a stage string is valid
func IsValidStage(s string) bool {
	for _, stage := range AllStages() {
		if string(stage) == s {
			return true
		}
	}
	return false
}

// PipelineResult represents the result of a pipeline stage execution
type PipelineResult struct {
	Stage       Stage                  `json:"stage"`
	Success     bool                   `json:"success"`
	InputCount  int                    `json:"input_count"`
	OutputCount int                    `json:"output_count"`
	Duration    int64                  `json:"duration_ms"`
	Error       string                 `json:"error,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
