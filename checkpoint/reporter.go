package checkpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// UploadCheckpointByS3 publishes the checkpoint JSON to the configured
// bucket. With empty keys the SDK falls back to its default credential
// chain.
func UploadCheckpointByS3(c *Checkpoint, accessKey, secretKey, region, bucket string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to load the AWS config: %v", err)
	}

	uploader := manager.NewUploader(s3.NewFromConfig(cfg))

	checkpointJSON, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint to JSON: %v", err)
	}

	objectKey := fmt.Sprintf("checkpoint-%s-%s-%s.json", c.Name, c.Height, c.Hash)
	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(objectKey),
		Body:   bytes.NewReader(checkpointJSON),
	})
	if err != nil {
		return fmt.Errorf("failed to upload checkpoint: %v", err)
	}
	return nil
}
