package sampling

import "fmt"

// Request is a sampling design together with its parameters. It is one of
// Random, Systematic, Stratified, Cluster1 or Cluster2.
type Request interface {
	Method() Method
	isRequest()
}

// Random draws SampleSize distinct rows uniformly.
type Random struct {
	SampleSize int `yaml:"sample_size" json:"sample_size"`
}

// Systematic takes every k-th row starting at the first one.
type Systematic struct {
	SampleSize int `yaml:"sample_size" json:"sample_size"`
}

// Stratified draws SampleSize/strata rows with replacement from each stratum.
type Stratified struct {
	SampleSize   int    `yaml:"sample_size" json:"sample_size"`
	StrataColumn string `yaml:"strata_column" json:"strata_column"`
}

// Cluster1 keeps every row of ClusterCount randomly chosen clusters.
type Cluster1 struct {
	ClusterColumn string `yaml:"cluster_column" json:"cluster_column"`
	ClusterCount  int    `yaml:"cluster_count" json:"cluster_count"`
}

// Cluster2 chooses ClusterCount clusters, then subsamples SampleSize rows
// across them in proportion to cluster size.
type Cluster2 struct {
	ClusterColumn string `yaml:"cluster_column" json:"cluster_column"`
	ClusterCount  int    `yaml:"cluster_count" json:"cluster_count"`
	SampleSize    int    `yaml:"sample_size" json:"sample_size"`
}

func (Random) Method() Method     { return MethodRandom }
func (Systematic) Method() Method { return MethodSystematic }
func (Stratified) Method() Method { return MethodStratified }
func (Cluster1) Method() Method   { return MethodCluster1 }
func (Cluster2) Method() Method   { return MethodCluster2 }

func (Random) isRequest()     {}
func (Systematic) isRequest() {}
func (Stratified) isRequest() {}
func (Cluster1) isRequest()   {}
func (Cluster2) isRequest()   {}

// Params carries loosely typed form or flag values before they are bound to
// a concrete Request.
type Params struct {
	SampleSize   int
	Column       string
	ClusterCount int
}

// NewRequest binds params to the request type of method m. Only presence is
// checked here; ranges are checked against a table by Validate.
func NewRequest(m Method, p Params) (Request, error) {
	needColumn := func(field string) error {
		if p.Column == "" {
			return &InvalidParameterError{Field: field, Reason: fmt.Sprintf("required for %s sampling", m)}
		}
		return nil
	}
	switch m {
	case MethodRandom:
		return Random{SampleSize: p.SampleSize}, nil
	case MethodSystematic:
		return Systematic{SampleSize: p.SampleSize}, nil
	case MethodStratified:
		if err := needColumn(FieldStrataColumn); err != nil {
			return nil, err
		}
		return Stratified{SampleSize: p.SampleSize, StrataColumn: p.Column}, nil
	case MethodCluster1:
		if err := needColumn(FieldClusterColumn); err != nil {
			return nil, err
		}
		return Cluster1{ClusterColumn: p.Column, ClusterCount: p.ClusterCount}, nil
	case MethodCluster2:
		if err := needColumn(FieldClusterColumn); err != nil {
			return nil, err
		}
		return Cluster2{ClusterColumn: p.Column, ClusterCount: p.ClusterCount, SampleSize: p.SampleSize}, nil
	default:
		return nil, &InvalidParameterError{Field: FieldMethod, Value: string(m), Reason: "unknown method"}
	}
}

// Describe flattens a request into ordered field/value pairs.
func Describe(req Request) [][2]string {
	switch r := req.(type) {
	case Random:
		return [][2]string{{FieldSampleSize, fmt.Sprint(r.SampleSize)}}
	case Systematic:
		return [][2]string{{FieldSampleSize, fmt.Sprint(r.SampleSize)}}
	case Stratified:
		return [][2]string{{FieldSampleSize, fmt.Sprint(r.SampleSize)}, {FieldStrataColumn, r.StrataColumn}}
	case Cluster1:
		return [][2]string{{FieldClusterColumn, r.ClusterColumn}, {FieldClusterCount, fmt.Sprint(r.ClusterCount)}}
	case Cluster2:
		return [][2]string{
			{FieldClusterColumn, r.ClusterColumn},
			{FieldClusterCount, fmt.Sprint(r.ClusterCount)},
			{FieldSampleSize, fmt.Sprint(r.SampleSize)},
		}
	default:
		return nil
	}
}
