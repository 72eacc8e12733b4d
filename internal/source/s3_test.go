package source_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rpggio/geodash/internal/domain/record"
	"github.com/rpggio/geodash/internal/source"
	"github.com/stretchr/testify/require"
)

// objectStore serves path-style GETs from memory.
type objectStore struct {
	objects map[string][]byte
	paths   []string
}

func (o *objectStore) RoundTrip(req *http.Request) (*http.Response, error) {
	o.paths = append(o.paths, req.URL.Path)
	body, ok := o.objects[req.URL.Path]
	if req.Method != http.MethodGet || !ok {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(bytes.NewReader(nil)),
			Header:     http.Header{},
			Request:    req,
		}, nil
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Header: http.Header{
			"Content-Length": {strconv.Itoa(len(body))},
			"Content-Type":   {"application/x-ndjson"},
		},
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}

func mockS3(t *testing.T, rt http.RoundTripper) *s3.Client {
	t.Helper()
	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	require.NoError(t, err)
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
	})
}

func TestS3_Fetch(t *testing.T) {
	want := generator(40, 11).Generate()
	var buf bytes.Buffer
	require.NoError(t, source.EncodeJSONL(&buf, want))

	store := &objectStore{objects: map[string][]byte{"/datasets/projects.jsonl": buf.Bytes()}}
	p := source.NewS3WithClient(mockS3(t, store), "datasets", "projects.jsonl")

	got, err := p.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, []string{"/datasets/projects.jsonl"}, store.paths)
}

func TestS3_MissingObjectFailsLoad(t *testing.T) {
	store := &objectStore{objects: map[string][]byte{}}
	p := source.NewS3WithClient(mockS3(t, store), "datasets", "absent.jsonl")

	err := record.NewStore().Load(context.Background(), p)
	require.ErrorIs(t, err, record.ErrLoadFailed)
}

func TestNewS3_RequiresBucketAndKey(t *testing.T) {
	_, err := source.NewS3(context.Background(), source.S3Config{Bucket: "datasets"})
	require.Error(t, err)
}
