package validators

import "go.mongodb.org/mongo-driver/bson"

var bucket = bson.M{
	"bsonType": "array",
	"items":    bson.M{"bsonType": "object"},
}

var count = bson.M{
	"bsonType": []string{"int", "long"},
	"minimum":  0,
}

var ReconciliationResultValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"upload_id",
			"gst_header_row",
			"tally_header_row",
			"summary",
			"source",
			"created_at",
		},
		"additionalProperties": true,
		"properties": bson.M{
			"_id": bson.M{"bsonType": "objectId"},
			"upload_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},
			"gst_header_row":   bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
			"tally_header_row": bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
			"summary": bson.M{
				"bsonType": "object",
				"required": []string{
					"total_gst_records",
					"total_tally_records",
					"exact_matches",
					"partial_matches",
					"high_discrepancy_matches",
					"gst_mismatches",
					"tally_mismatches",
				},
				"properties": bson.M{
					"total_gst_records":        count,
					"total_tally_records":      count,
					"exact_matches":            count,
					"partial_matches":          count,
					"high_discrepancy_matches": count,
					"gst_mismatches":           count,
					"tally_mismatches":         count,
				},
			},
			"result": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"mapping":                  bson.M{"bsonType": "array", "minItems": 1},
					"key_features":             bson.M{"bsonType": "array", "minItems": 1},
					"partial_threshold":        bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
					"exact_matches":            bucket,
					"partial_matches":          bucket,
					"high_discrepancy_matches": bucket,
					"gst_mismatches":           bucket,
					"tally_mismatches":         bucket,
				},
			},
			"source": bson.M{
				"enum": []string{"http", "kafka"},
			},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
